package cli

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/harness-provisioner/internal/clierror"
	"github.com/blackwell-systems/harness-provisioner/internal/provision"
)

func TestSecretsCreatesOneIDPerPairInOrder(t *testing.T) {
	p := newFakePlatform(t)
	p.managers["Harness Secrets Manager - GCP KMS"] = "sm-1"

	args := append(p.connArgs(),
		"-m", "Harness Secrets Manager - GCP KMS",
		"-n", "Amazon password, Google cloud password, Azure credentials",
		"-v", "AmaZonPwd, GCpWd, aZurEpWd",
	)
	res := runCommand(t, NewSecretsCommand("test"), args...)
	require.Equal(t, 0, res.code, "stderr: %s", res.stderr)

	assert.Contains(t, res.stdout, "Created secrets:")
	assert.Contains(t, res.stdout, "secret-1\n    secret-2\n    secret-3")
	assert.Equal(t, 3, p.count("createSecret("))

	var names, values []string
	for _, r := range p.requests {
		if sec, ok := r.Variables["secret"].(map[string]any); ok {
			text := sec["encryptedText"].(map[string]any)
			names = append(names, text["name"].(string))
			values = append(values, text["value"].(string))
			assert.Equal(t, "sm-1", text["secretManagerId"])
		}
	}
	assert.Equal(t, []string{"Amazon password", "Google cloud password", "Azure credentials"}, names)
	assert.Equal(t, []string{"AmaZonPwd", "GCpWd", "aZurEpWd"}, values)

	for _, key := range p.apiKeys {
		assert.Equal(t, "test-key", key)
	}
}

func TestSecretsMismatchedLengthsFailBeforeNetwork(t *testing.T) {
	p := newFakePlatform(t)
	p.managers["kms"] = "sm-1"

	args := append(p.connArgs(), "-m", "kms", "-n", "A,B", "-v", "x")
	res := runCommand(t, NewSecretsCommand("test"), args...)

	assert.Equal(t, clierror.ExitUsage, res.code)
	assert.Contains(t, res.stderr, "does not match")
	assert.Contains(t, res.stderr, "Usage:")
	assert.Zero(t, p.total(), "no request may be sent when validation fails")
}

func TestSecretsMissingArguments(t *testing.T) {
	p := newFakePlatform(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no flags", nil, "--secret-manager-name is required"},
		{"no names", []string{"-m", "kms", "-v", "x"}, "--secret-names is required"},
		{"no values", []string{"-m", "kms", "-n", "A"}, "--secret-values is required"},
		{"empty element", []string{"-m", "kms", "-n", "A,,B", "-v", "x,y,z"}, "element 2 is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCommand(t, NewSecretsCommand("test"), append(p.connArgs(), tt.args...)...)
			assert.Equal(t, clierror.ExitUsage, res.code)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
	assert.Zero(t, p.total())
}

func TestSecretsHelpExitsZero(t *testing.T) {
	res := runCommand(t, NewSecretsCommand("test"), "--help")

	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "--secret-manager-name")
	assert.Contains(t, res.stdout, "--secret-values")
}

func TestSecretsUnknownFlagIsUsageError(t *testing.T) {
	res := runCommand(t, NewSecretsCommand("test"), "--no-such-flag")
	assert.Equal(t, clierror.ExitUsage, res.code)
}

func TestSecretsRequiresAPIKey(t *testing.T) {
	p := newFakePlatform(t)

	res := runCommand(t, NewSecretsCommand("test"), "--endpoint", p.srv.URL, "-m", "kms", "-n", "A", "-v", "x")
	assert.Equal(t, clierror.ExitUsage, res.code)
	assert.Contains(t, res.stderr, "api key is required")
	assert.Zero(t, p.total())
}

func TestSecretsManagerNotFound(t *testing.T) {
	p := newFakePlatform(t)

	args := append(p.connArgs(), "-m", "missing", "-n", "A", "-v", "x")
	res := runCommand(t, NewSecretsCommand("test"), args...)

	assert.Equal(t, clierror.ExitNotFound, res.code)
	assert.Zero(t, p.count("createSecret("))
}

func TestSecretsManagerTransportFailureStops(t *testing.T) {
	p := newFakePlatform(t)
	p.lookupStatus = http.StatusBadGateway

	args := append(p.connArgs(), "-m", "kms", "-n", "A", "-v", "x")
	res := runCommand(t, NewSecretsCommand("test"), args...)

	assert.Equal(t, clierror.ExitServiceUnavailable, res.code)
	assert.Equal(t, 1, p.total())
	assert.Zero(t, p.count("createSecret("), "no secret is attempted without a manager id")
}

func TestSecretsFromManifest(t *testing.T) {
	p := newFakePlatform(t)
	p.managers["kms"] = "sm-1"

	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
secretManager: kms
secrets:
  - name: db-password
    value: "a,b,c"
  - name: api-token
    value: t0k3n
`), 0o600))

	res := runCommand(t, NewSecretsCommand("test"), append(p.connArgs(), "-f", path)...)
	require.Equal(t, 0, res.code, "stderr: %s", res.stderr)
	assert.Equal(t, 2, p.count("createSecret("))
}

func TestSecretsFileAndFlagsAreExclusive(t *testing.T) {
	res := runCommand(t, NewSecretsCommand("test"), "-f", "x.yaml", "-m", "kms")
	assert.Equal(t, clierror.ExitUsage, res.code)
}

func TestSecretsOptionsRequest(t *testing.T) {
	req, err := secretsOptions{manager: "kms", names: " a , b ", values: "1,2"}.request()
	require.NoError(t, err)

	assert.Equal(t, provision.SecretsRequest{
		Manager: "kms",
		Secrets: []provision.Secret{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}},
	}, req)
}

func TestVersionAndConfigSubcommands(t *testing.T) {
	res := runCommand(t, NewSecretsCommand("1.2.3"), "version")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "provision-secrets version 1.2.3")

	res = runCommand(t, NewSecretsCommand("1.2.3"), "config", "--api-key", "abcdefgh1234")
	assert.Equal(t, 0, res.code, "stderr: %s", res.stderr)
	assert.Contains(t, res.stdout, "***1234")
	assert.False(t, strings.Contains(res.stdout, "abcdefgh1234"))
}

func TestConfigSaveWritesFileWithoutAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	res := runCommand(t, NewSecretsCommand("test"), "config", "save", "--path", path,
		"--endpoint", "http://localhost:9000/graphql", "--api-key", "abcdefgh1234")
	require.Equal(t, 0, res.code, "stderr: %s", res.stderr)
	assert.Contains(t, res.stdout, "Configuration written to "+path)
	assert.Contains(t, res.stdout, "API key not saved")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://localhost:9000/graphql")
	assert.NotContains(t, string(data), "abcdefgh1234")
}

func TestPing(t *testing.T) {
	p := newFakePlatform(t)

	res := runCommand(t, NewUsersCommand("test"), append([]string{"ping"}, p.connArgs()...)...)
	assert.Equal(t, 0, res.code, "stderr: %s", res.stderr)
	assert.Contains(t, res.stdout, "✓ UP")
	assert.Equal(t, 1, p.count("__typename"))
}
