package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestSetup_EnvFileConfigAndFlags(t *testing.T) {
	t.Setenv("KICK_USER_AGENT", "placeholder")
	require.NoError(t, os.Unsetenv("KICK_USER_AGENT"))

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("KICK_USER_AGENT=test-agent\n"), 0o600))
	cfgFile := filepath.Join(dir, "kickwatch.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("channel: xqc\nlog_level: WARN\n"), 0o600))

	a := &app{configPath: cfgFile, envFile: envFile, logLevel: "DEBUG", noColor: true}
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, a.setup(cmd))
	require.Equal(t, "test-agent", a.cfg.UserAgent)
	require.Equal(t, "xqc", a.cfg.Channel)
	require.Equal(t, "DEBUG", a.cfg.LogLevel)
	require.False(t, a.colored)

	a.log.Debug("visible")
	require.Contains(t, out.String(), "visible")
}

func TestSetup_MissingEnvFileIsFine(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "kickwatch.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("channel: xqc\n"), 0o600))

	a := &app{configPath: cfgFile, envFile: filepath.Join(dir, "missing.env"), channel: "trainwreckstv", noColor: true}
	require.NoError(t, a.setup(&cobra.Command{}))
	require.Equal(t, "trainwreckstv", a.cfg.Channel)
}

func TestSetup_MissingConfigFile(t *testing.T) {
	dir := t.TempDir()
	a := &app{configPath: filepath.Join(dir, "nope.yaml"), envFile: filepath.Join(dir, ".env")}
	require.Error(t, a.setup(&cobra.Command{}))
}

func TestChannelArg(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "kickwatch.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("log_level: INFO\n"), 0o600))

	a := &app{configPath: cfgFile, envFile: filepath.Join(dir, ".env"), noColor: true}
	require.NoError(t, a.setup(&cobra.Command{}))
	a.cfg.Channel = ""

	ch, err := a.channelArg([]string{"xqc"})
	require.NoError(t, err)
	require.Equal(t, "xqc", ch)

	_, err = a.channelArg(nil)
	require.ErrorContains(t, err, "no channel given")

	a.cfg.Channel = "fromconfig"
	ch, err = a.channelArg(nil)
	require.NoError(t, err)
	require.Equal(t, "fromconfig", ch)
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.Subset(t, names, []string{"watch", "info", "viewers", "categories", "featured"})

	for _, flag := range []string{"config", "log-level", "channel", "no-color", "env-file"} {
		require.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}
