package location

import (
	"github.com/smallbiznis/invoicer/internal/location/repository"
	"github.com/smallbiznis/invoicer/internal/location/service"
	"go.uber.org/fx"
)

var Module = fx.Module("location.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
