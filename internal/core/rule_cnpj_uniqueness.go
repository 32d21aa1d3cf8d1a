package core

import (
	"context"
	"fmt"

	"prospecia/pkg/domain"
)

// CNPJUniquenessRule blocks two non-excluded clients in the same tenant from
// sharing a CNPJ.
func CNPJUniquenessRule() domain.Rule {
	return cnpjUniquenessRule{}
}

type cnpjUniquenessRule struct{}

func (cnpjUniquenessRule) Name() string { return "cnpj_uniqueness" }

func (cnpjUniquenessRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	touched := map[string]struct{}{}
	for _, change := range changes {
		if change.Entity != domain.EntityClient || change.After == nil {
			continue
		}
		if client, ok := change.After.(domain.Client); ok {
			touched[client.ID] = struct{}{}
		}
	}
	if len(touched) == 0 {
		return res, nil
	}

	type key struct {
		tenant string
		cnpj   string
	}
	seen := map[key]string{}
	for _, client := range view.ListClients() {
		if client.Status == domain.ClientStatusExcluded || client.CNPJ == "" {
			continue
		}
		k := key{tenant: client.TenantID, cnpj: domain.NormalizeCNPJ(client.CNPJ)}
		otherID, dup := seen[k]
		if !dup {
			seen[k] = client.ID
			continue
		}
		_, first := touched[client.ID]
		_, second := touched[otherID]
		if !first && !second {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "cnpj_uniqueness",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("clients %s and %s share CNPJ %s", otherID, client.ID, k.cnpj),
			Entity:   domain.EntityClient,
			EntityID: client.ID,
		})
	}
	return res, nil
}
