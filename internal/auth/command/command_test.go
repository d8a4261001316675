package command

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`
log:
  level: error
database:
  path: %s
secrets:
  pepper: %s
  internal: %s
`, filepath.Join(dir, "siteauth.db"), filepath.Join(dir, "pepper"), filepath.Join(dir, "internal"))

	path := filepath.Join(dir, "siteauth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := App()
	a.Writer = &out
	a.ErrWriter = &out
	a.ExitErrHandler = func(*cli.Context, error) {}
	err := a.Run(append([]string{"siteauth", "--config", config}, args...))
	return out.String(), err
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

func TestInvite(t *testing.T) {
	config := writeConfig(t)

	out, err := run(t, config, "invite", "--email", "ed@example.com", "--role", "editor")
	require.NoError(t, err)
	require.Contains(t, out, "invitation for ed@example.com (Editor)")
	require.Len(t, lastLine(out), 43, "raw token is 32 bytes base64url")
}

func TestInvite_RejectsOwnerRole(t *testing.T) {
	_, err := run(t, writeConfig(t), "invite", "--email", "o@example.com", "--role", "owner")
	require.Error(t, err)
}

func TestInvite_RequiresEmail(t *testing.T) {
	_, err := run(t, writeConfig(t), "invite")
	require.Error(t, err)
}

func TestInternalToken(t *testing.T) {
	out, err := run(t, writeConfig(t), "internal-token", "--subject", "deploy-bot", "--ttl", "5m")
	require.NoError(t, err)
	require.Len(t, strings.Split(lastLine(out), "."), 3)
}

func TestResetAllPasswords(t *testing.T) {
	config := writeConfig(t)

	_, err := run(t, config, "reset-all-passwords")
	require.Error(t, err, "--yes is required")

	out, err := run(t, config, "reset-all-passwords", "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "all passwords reset")
}

func TestRotateSecret(t *testing.T) {
	out, err := run(t, writeConfig(t), "rotate-secret")
	require.NoError(t, err)
	require.Contains(t, out, "install secret rotated")
}

func TestParseRole(t *testing.T) {
	r, err := parseRole("ADMINISTRATOR")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdministrator, r)

	_, err = parseRole("Owner")
	require.Error(t, err)
}
