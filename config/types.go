package config

// ServerConfig is the parsed form of server.toml, the declarative definition
// of a managed server.
type ServerConfig struct {
	Name      string `toml:"name" json:"name" jsonschema:"required,description=Name of the server"`
	MCVersion string `toml:"mc_version" json:"mc_version" jsonschema:"required,description=Minecraft version the server targets"`

	Jar      Jar      `toml:"jar" json:"jar" jsonschema:"description=Which server jar to run"`
	Launcher Launcher `toml:"launcher" json:"launcher" jsonschema:"description=How the server process is launched"`

	Plugins []Addon `toml:"plugins,omitempty" json:"plugins,omitempty" jsonschema:"description=Plugin downloads"`
	Mods    []Addon `toml:"mods,omitempty" json:"mods,omitempty" jsonschema:"description=Mod downloads"`

	// Variables are substituted into bootstrapped config files via ${NAME}.
	Variables map[string]string `toml:"variables,omitempty" json:"variables,omitempty" jsonschema:"description=Values substituted into bootstrapped config files"`

	// Path is where the server.toml was loaded from. Not part of the file itself.
	Path string `toml:"-" json:"-"`
}

// Jar describes the server jar to run.
type Jar struct {
	// Type is the server family, e.g. "vanilla", "paper", "fabric", "forge".
	Type string `toml:"type" json:"type" jsonschema:"required,description=Server jar family"`
	// Version pins a specific build; empty means latest.
	Version string `toml:"version,omitempty" json:"version,omitempty" jsonschema:"description=Specific build or loader version"`
	// URL overrides resolution with a direct download.
	URL string `toml:"url,omitempty" json:"url,omitempty" jsonschema:"description=Direct download URL for the jar"`
}

// Addon is a single plugin or mod download spec.
type Addon struct {
	Name string `toml:"name,omitempty" json:"name,omitempty" jsonschema:"description=Display name"`
	URL  string `toml:"url" json:"url" jsonschema:"required,description=Download URL"`
}

// Launcher controls the java invocation for the server process.
type Launcher struct {
	// Memory sets both -Xms and -Xmx, e.g. "2G".
	Memory string `toml:"memory,omitempty" json:"memory,omitempty" jsonschema:"description=Heap size for -Xms/-Xmx"`
	// AikarsFlags enables Aikar's GC tuning flag set.
	AikarsFlags bool `toml:"aikars_flags,omitempty" json:"aikars_flags,omitempty" jsonschema:"description=Enable Aikar's GC flags"`
	// NoGUI appends the server's nogui argument.
	NoGUI bool `toml:"nogui,omitempty" json:"nogui,omitempty" jsonschema:"description=Disable the server GUI"`
	// EULAArgs agrees to the EULA via a JVM property instead of eula.txt.
	EULAArgs bool `toml:"eula_args,omitempty" json:"eula_args,omitempty" jsonschema:"description=Agree to the EULA via -Dcom.mojang.eula.agree"`
	// JVMArgs are inserted before -jar.
	JVMArgs []string `toml:"jvm_args,omitempty" json:"jvm_args,omitempty" jsonschema:"description=Extra JVM arguments"`
	// GameArgs are appended after the jar.
	GameArgs []string `toml:"game_args,omitempty" json:"game_args,omitempty" jsonschema:"description=Extra server arguments"`
	// JavaBinary overrides the java executable name.
	JavaBinary string `toml:"java_binary,omitempty" json:"java_binary,omitempty" jsonschema:"description=Java executable to use"`
}
