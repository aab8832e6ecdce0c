package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"go.uber.org/fx"
)

type resolverParam struct {
	fx.In

	Repository taxdomain.Repository
}

type resolver struct {
	repo taxdomain.Repository
}

func NewResolver(p resolverParam) taxdomain.Resolver {
	return &resolver{repo: p.Repository}
}

// DefaultRate returns the org's enabled default rate, or the null rate when
// none is configured.
func (r *resolver) DefaultRate(ctx context.Context, orgID snowflake.ID) (taxdomain.Rate, error) {
	def, err := r.repo.GetDefault(ctx, orgID)
	if err != nil {
		return taxdomain.Unspecified(), err
	}
	if def == nil {
		return taxdomain.Unspecified(), nil
	}
	return def.Rate, nil
}
