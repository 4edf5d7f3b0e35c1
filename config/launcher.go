package config

import (
	"fmt"
	"strings"
)

// aikarsFlags is Aikar's recommended GC tuning for server JVMs.
var aikarsFlags = []string{
	"-XX:+UseG1GC",
	"-XX:+ParallelRefProcEnabled",
	"-XX:MaxGCPauseMillis=200",
	"-XX:+UnlockExperimentalVMOptions",
	"-XX:+DisableExplicitGC",
	"-XX:+AlwaysPreTouch",
	"-XX:G1NewSizePercent=30",
	"-XX:G1MaxNewSizePercent=40",
	"-XX:G1HeapRegionSize=8M",
	"-XX:G1ReservePercent=20",
	"-XX:G1HeapWastePercent=5",
	"-XX:G1MixedGCCountTarget=4",
	"-XX:InitiatingHeapOccupancyPercent=15",
	"-XX:G1MixedGCLiveThresholdPercent=90",
	"-XX:G1RSetUpdatingPauseTimePercent=5",
	"-XX:SurvivorRatio=32",
	"-XX:+PerfDisableSharedMem",
	"-XX:MaxTenuringThreshold=1",
}

// Java returns the java executable to launch.
func (l *Launcher) Java() string {
	if l.JavaBinary != "" {
		return l.JavaBinary
	}
	return "java"
}

// GetArguments assembles the full argument list for the server process.
// The startup slice is the jar-specific invocation (see Jar.StartupMethod);
// platform is "windows" or "linux" and only affects argument formatting.
func (l *Launcher) GetArguments(startup []string, platform string) []string {
	var args []string

	if l.Memory != "" {
		args = append(args, "-Xms"+l.Memory, "-Xmx"+l.Memory)
	}

	if l.AikarsFlags {
		args = append(args, aikarsFlags...)
		if platform == "windows" {
			args = append(args, "-XX:+UseLargePagesInMetaspace")
		}
	}

	if l.EULAArgs {
		args = append(args, "-Dcom.mojang.eula.agree=true")
	}

	args = append(args, l.JVMArgs...)
	args = append(args, startup...)

	if l.NoGUI {
		args = append(args, "nogui")
	}

	args = append(args, l.GameArgs...)

	return args
}

// Filename returns the on-disk name of the server jar in the output
// directory. A direct URL keeps its basename; resolved jars are named
// after the family and version.
func (j *Jar) Filename(mcVersion string) string {
	if j.URL != "" {
		if idx := strings.LastIndex(j.URL, "/"); idx >= 0 && idx < len(j.URL)-1 {
			return j.URL[idx+1:]
		}
	}
	version := j.Version
	if version == "" {
		version = mcVersion
	}
	return fmt.Sprintf("%s-%s.jar", j.Type, version)
}

// StartupMethod returns the jar-specific part of the java invocation.
// Forge-style servers launch through a generated args file whose name
// depends on the platform; everything else is a plain -jar invocation.
func (j *Jar) StartupMethod(jarName, platform string) []string {
	switch j.Type {
	case "forge", "neoforge":
		argsFile := "unix_args.txt"
		if platform == "windows" {
			argsFile = "win_args.txt"
		}
		return []string{fmt.Sprintf("@libraries/%s/%s/%s", j.Type, j.Version, argsFile)}
	default:
		return []string{"-jar", jarName}
	}
}
