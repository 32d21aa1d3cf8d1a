package core

import "prospecia/pkg/domain"

// NewDefaultRulesEngine returns an engine carrying the rules every deployment
// runs: CNPJ uniqueness and cross-entity referential integrity.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(CNPJUniquenessRule())
	engine.Register(ReferentialIntegrityRule())
	return engine
}
