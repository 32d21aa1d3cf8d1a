package core

import (
	"context"
	"fmt"

	"prospecia/pkg/domain"
)

// ReferentialIntegrityRule blocks commits that introduce dangling references:
// opportunities must point at existing non-excluded clients and funding
// sources, projects at institutes, interactions at clients, and ingestions at
// existing consents when they claim one.
func ReferentialIntegrityRule() domain.Rule {
	return referentialIntegrityRule{}
}

type referentialIntegrityRule struct{}

func (referentialIntegrityRule) Name() string { return "referential_integrity" }

func (referentialIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	for _, change := range changes {
		if change.After == nil {
			continue
		}
		switch change.Entity {
		case domain.EntityOpportunity:
			opp, ok := change.After.(domain.Opportunity)
			if !ok {
				continue
			}
			checkClientRef(&res, view, domain.EntityOpportunity, opp.ID, opp.TenantID, opp.ClientID)
			if source, ok := view.FindFundingSource(opp.FundingSourceID); !ok || source.TenantID != opp.TenantID || source.Status == domain.FundingStatusExcluded {
				res.Violations = append(res.Violations, refViolation(domain.EntityOpportunity, opp.ID,
					fmt.Sprintf("opportunity %s references missing funding source %s", opp.ID, opp.FundingSourceID)))
			}
		case domain.EntityProject:
			project, ok := change.After.(domain.Project)
			if !ok {
				continue
			}
			if inst, ok := view.FindInstitute(project.InstituteID); !ok || inst.TenantID != project.TenantID || inst.Status == domain.InstituteStatusExcluded {
				res.Violations = append(res.Violations, refViolation(domain.EntityProject, project.ID,
					fmt.Sprintf("project %s references missing institute %s", project.ID, project.InstituteID)))
			}
		case domain.EntityInteraction:
			interaction, ok := change.After.(domain.Interaction)
			if !ok {
				continue
			}
			checkClientRef(&res, view, domain.EntityInteraction, interaction.ID, interaction.TenantID, interaction.ClientID)
		case domain.EntityIngestion:
			ingestion, ok := change.After.(domain.Ingestion)
			if !ok {
				continue
			}
			if ingestion.ConsentID == "" {
				continue
			}
			if consent, ok := view.FindConsent(ingestion.ConsentID); !ok || consent.TenantID != ingestion.TenantID {
				res.Violations = append(res.Violations, refViolation(domain.EntityIngestion, ingestion.ID,
					fmt.Sprintf("ingestion %s references missing consent %s", ingestion.ID, ingestion.ConsentID)))
			}
		}
	}
	return res, nil
}

func checkClientRef(res *domain.Result, view domain.RuleView, entity domain.EntityType, entityID, tenantID, clientID string) {
	client, ok := view.FindClient(clientID)
	if !ok || client.TenantID != tenantID || client.Status == domain.ClientStatusExcluded {
		res.Violations = append(res.Violations, refViolation(entity, entityID,
			fmt.Sprintf("%s %s references missing client %s", entity, entityID, clientID)))
	}
}

func refViolation(entity domain.EntityType, entityID, message string) domain.Violation {
	return domain.Violation{
		Rule:     "referential_integrity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   entity,
		EntityID: entityID,
	}
}
