package invoice

import (
	"github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/render"
	"github.com/smallbiznis/invoicer/internal/invoice/repository"
	"github.com/smallbiznis/invoicer/internal/invoice/service"
	orgdomain "github.com/smallbiznis/invoicer/internal/organization/domain"
	"github.com/smallbiznis/invoicer/internal/tax"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	tax.Module,
	fx.Provide(render.New),
	fx.Provide(repository.Provide),
	fx.Provide(func(s orgdomain.Service) domain.CurrencyResolver { return s }),
	fx.Provide(service.NewService),
)
