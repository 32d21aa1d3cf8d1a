package domain

import (
	"fmt"
	"strings"
)

// NormalizeCNPJ strips punctuation from a Brazilian CNPJ, keeping digits only.
func NormalizeCNPJ(cnpj string) string {
	var b strings.Builder
	b.Grow(len(cnpj))
	for _, r := range cnpj {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCNPJ performs format-only CNPJ validation: exactly 14 digits after
// stripping punctuation.
func ValidateCNPJ(cnpj string) error {
	if len(NormalizeCNPJ(cnpj)) != 14 {
		return ValidationError{Entity: EntityClient, Field: "cnpj", Reason: "must contain 14 digits"}
	}
	return nil
}

// ValidateTRL checks a technology readiness level against the 1-9 scale.
func ValidateTRL(entity EntityType, field string, trl int) error {
	if trl < 1 || trl > 9 {
		return ValidationError{Entity: entity, Field: field, Reason: fmt.Sprintf("must be between 1 and 9, got %d", trl)}
	}
	return nil
}

// ValidatePercent checks a 0-100 bounded value (scores, probabilities).
func ValidatePercent(entity EntityType, field string, value int) error {
	if value < 0 || value > 100 {
		return ValidationError{Entity: entity, Field: field, Reason: fmt.Sprintf("must be between 0 and 100, got %d", value)}
	}
	return nil
}

// Validate checks client domain fields.
func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ValidationError{Entity: EntityClient, Field: "name", Reason: "required"}
	}
	return ValidateCNPJ(c.CNPJ)
}

// Validate checks funding source domain fields.
func (f FundingSource) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ValidationError{Entity: EntityFundingSource, Field: "name", Reason: "required"}
	}
	if err := ValidateTRL(EntityFundingSource, "trl_min", f.TRLMin); err != nil {
		return err
	}
	if err := ValidateTRL(EntityFundingSource, "trl_max", f.TRLMax); err != nil {
		return err
	}
	if f.TRLMin > f.TRLMax {
		return ValidationError{Entity: EntityFundingSource, Field: "trl_min", Reason: "cannot be greater than trl_max"}
	}
	if f.Amount < 0 {
		return ValidationError{Entity: EntityFundingSource, Field: "amount", Reason: "cannot be negative"}
	}
	return nil
}

// Validate checks opportunity domain fields.
func (o Opportunity) Validate() error {
	if o.ClientID == "" {
		return ValidationError{Entity: EntityOpportunity, Field: "client_id", Reason: "required"}
	}
	if o.FundingSourceID == "" {
		return ValidationError{Entity: EntityOpportunity, Field: "funding_source_id", Reason: "required"}
	}
	if o.Stage != "" && !ValidStage(o.Stage) {
		return ValidationError{Entity: EntityOpportunity, Field: "stage", Reason: fmt.Sprintf("unknown stage %q", o.Stage)}
	}
	if err := ValidatePercent(EntityOpportunity, "score", o.Score); err != nil {
		return err
	}
	return ValidatePercent(EntityOpportunity, "probability", o.Probability)
}

// Validate checks institute domain fields.
func (i Institute) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ValidationError{Entity: EntityInstitute, Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(i.ContactEmail) == "" {
		return ValidationError{Entity: EntityInstitute, Field: "contact_email", Reason: "required"}
	}
	return nil
}

// Validate checks project domain fields.
func (p Project) Validate() error {
	if p.InstituteID == "" {
		return ValidationError{Entity: EntityProject, Field: "institute_id", Reason: "required"}
	}
	if err := ValidateTRL(EntityProject, "trl", p.TRL); err != nil {
		return err
	}
	if p.TeamSize < 1 {
		return ValidationError{Entity: EntityProject, Field: "team_size", Reason: "must be at least 1"}
	}
	return nil
}

// Validate checks interaction domain fields.
func (i Interaction) Validate() error {
	if i.ClientID == "" {
		return ValidationError{Entity: EntityInteraction, Field: "client_id", Reason: "required"}
	}
	if strings.TrimSpace(i.Title) == "" {
		return ValidationError{Entity: EntityInteraction, Field: "title", Reason: "required"}
	}
	return nil
}

// Validate checks ingestion domain fields.
func (i Ingestion) Validate() error {
	if i.Source == "" {
		return ValidationError{Entity: EntityIngestion, Field: "source", Reason: "required"}
	}
	if i.Method == "" {
		return ValidationError{Entity: EntityIngestion, Field: "method", Reason: "required"}
	}
	return ValidatePercent(EntityIngestion, "reliability_score", i.ReliabilityScore)
}

// Validate checks consent domain fields. The status must be set explicitly
// by the caller; there is no default.
func (c Consent) Validate() error {
	if strings.TrimSpace(c.Purpose) == "" {
		return ValidationError{Entity: EntityConsent, Field: "purpose", Reason: "required"}
	}
	if c.Status == "" {
		return ValidationError{Entity: EntityConsent, Field: "status", Reason: "must be set explicitly"}
	}
	if !ValidStatus(EntityConsent, string(c.Status)) {
		return ValidationError{Entity: EntityConsent, Field: "status", Reason: fmt.Sprintf("unknown status %q", c.Status)}
	}
	return nil
}

// Validate checks competence catalog fields.
func (c Competence) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ValidationError{Entity: EntityCompetence, Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(c.Category) == "" {
		return ValidationError{Entity: EntityCompetence, Field: "category", Reason: "required"}
	}
	return nil
}
