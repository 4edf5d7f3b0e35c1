package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetArguments(t *testing.T) {
	l := &Launcher{
		Memory:   "2G",
		NoGUI:    true,
		EULAArgs: true,
		JVMArgs:  []string{"-Dfile.encoding=UTF-8"},
		GameArgs: []string{"--world", "smp"},
	}
	jar := &Jar{Type: "paper"}

	args := l.GetArguments(jar.StartupMethod("server.jar", "linux"), "linux")

	assert.Equal(t, []string{
		"-Xms2G", "-Xmx2G",
		"-Dcom.mojang.eula.agree=true",
		"-Dfile.encoding=UTF-8",
		"-jar", "server.jar",
		"nogui",
		"--world", "smp",
	}, args)
}

func TestGetArgumentsAikarsFlags(t *testing.T) {
	l := &Launcher{AikarsFlags: true}
	jar := &Jar{Type: "paper"}

	linux := l.GetArguments(jar.StartupMethod("server.jar", "linux"), "linux")
	windows := l.GetArguments(jar.StartupMethod("server.jar", "windows"), "windows")

	assert.Contains(t, linux, "-XX:+UseG1GC")
	assert.NotContains(t, linux, "-XX:+UseLargePagesInMetaspace")
	assert.Contains(t, windows, "-XX:+UseLargePagesInMetaspace")
}

func TestStartupMethodForge(t *testing.T) {
	jar := &Jar{Type: "forge", Version: "47.2.0"}

	assert.Equal(t, []string{"@libraries/forge/47.2.0/unix_args.txt"},
		jar.StartupMethod("ignored.jar", "linux"))
	assert.Equal(t, []string{"@libraries/forge/47.2.0/win_args.txt"},
		jar.StartupMethod("ignored.jar", "windows"))
}

func TestJavaBinaryOverride(t *testing.T) {
	l := &Launcher{}
	assert.Equal(t, "java", l.Java())

	l.JavaBinary = "/opt/jdk17/bin/java"
	assert.Equal(t, "/opt/jdk17/bin/java", l.Java())
}
