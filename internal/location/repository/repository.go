package repository

import (
	"github.com/smallbiznis/invoicer/internal/location/domain"
	"github.com/smallbiznis/invoicer/pkg/repository"
	"gorm.io/gorm"
)

func Provide(db *gorm.DB) repository.Repository[domain.Location] {
	return repository.ProvideStore[domain.Location](db)
}
