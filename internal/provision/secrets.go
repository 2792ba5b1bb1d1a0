package provision

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/harness-provisioner/internal/harness"
)

// Secret is a name paired with its value.
type Secret struct {
	Name  string
	Value string
}

// SecretsRequest asks for secrets stored by the secret manager called Manager.
type SecretsRequest struct {
	Manager string
	Secrets []Secret
}

// SecretResult is the outcome for one secret: ID on success, Err otherwise.
type SecretResult struct {
	Name string
	ID   string
	Err  error
}

// SecretsResult holds one SecretResult per requested secret, in input order.
type SecretsResult struct {
	ManagerID string
	Items     []SecretResult
}

// Failed counts the secrets that were not created.
func (r *SecretsResult) Failed() int {
	n := 0
	for _, item := range r.Items {
		if item.Err != nil {
			n++
		}
	}
	return n
}

// IDs returns the ids of the created secrets in input order.
func (r *SecretsResult) IDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Err == nil {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// PairSecrets zips position-aligned names and values.
func PairSecrets(names, values []string) ([]Secret, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("length of secret names %d does not match length of secret values %d", len(names), len(values))
	}
	secrets := make([]Secret, len(names))
	for i := range names {
		secrets[i] = Secret{Name: names[i], Value: values[i]}
	}
	return secrets, nil
}

// CreateSecrets resolves the secret manager and creates every secret under
// it. A manager that cannot be resolved stops the operation before any secret
// is created; after that each secret succeeds or fails on its own.
func (p *Provisioner) CreateSecrets(ctx context.Context, req SecretsRequest) (*SecretsResult, error) {
	lookup, err := p.api.Resolve(ctx, harness.KindSecretManager, req.Manager)
	if err != nil {
		return nil, err
	}
	if !lookup.Found {
		return nil, &NotFoundError{Kind: harness.KindSecretManager, Name: req.Manager}
	}

	result := &SecretsResult{
		ManagerID: lookup.ID,
		Items:     make([]SecretResult, 0, len(req.Secrets)),
	}
	for _, s := range req.Secrets {
		id, err := p.api.CreateSecret(ctx, harness.EncryptedTextInput{
			Name:            s.Name,
			Value:           s.Value,
			SecretManagerID: lookup.ID,
			UsageScope:      harness.DefaultUsageScope(),
		})
		if err != nil {
			p.logger.Warn("secret not created", "secret", s.Name, "error", err)
		} else {
			p.logger.Info("secret created", "secret", s.Name, "id", id)
		}
		result.Items = append(result.Items, SecretResult{Name: s.Name, ID: id, Err: err})
	}
	return result, nil
}
