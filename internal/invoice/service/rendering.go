package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/invoicer/internal/invoice/render"
	locationdomain "github.com/smallbiznis/invoicer/internal/location/domain"
	"go.uber.org/zap"
)

func (s *Service) RenderHTML(ctx context.Context, id string) (string, error) {
	input, err := s.renderInput(ctx, id)
	if err != nil {
		return "", err
	}
	out, err := s.renderer.RenderHTML(input)
	if err != nil {
		s.log.Error("render html failed", zap.String("document_id", id), zap.Error(err))
		return "", fmt.Errorf("render html: %w", err)
	}
	return out, nil
}

func (s *Service) RenderPDF(ctx context.Context, id string) ([]byte, error) {
	input, err := s.renderInput(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.renderer.RenderPDF(input)
	if err != nil {
		s.log.Error("render pdf failed", zap.String("document_id", id), zap.Error(err))
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return out, nil
}

// renderInput loads the document together with the parties printed on it.
func (s *Service) renderInput(ctx context.Context, id string) (render.Input, error) {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return render.Input{}, err
	}

	input := render.Input{
		Document:    doc,
		AccentColor: s.config.Get().AccentColor,
	}

	org, err := s.organizations.FindByID(ctx, doc.OrgID)
	if err != nil {
		return render.Input{}, err
	}
	if org != nil {
		address := []string(org.AddressLines)
		if org.CountryCode != "" {
			address = append(address, org.CountryCode)
		}
		input.Organization = render.Party{
			Name:    org.Name,
			Email:   org.SupportEmail,
			Address: address,
		}
	}

	customer, err := s.customers.FindByID(ctx, s.db, doc.OrgID, doc.CustomerID)
	if err != nil {
		return render.Input{}, err
	}
	if customer != nil {
		input.Customer = render.Party{
			Name:  customer.Name,
			Email: customer.Emails.Primary(),
		}
	}

	if doc.LocationID != nil {
		loc, err := s.locations.FindOne(ctx, &locationdomain.Location{
			ID:    *doc.LocationID,
			OrgID: doc.OrgID,
		})
		if err != nil {
			return render.Input{}, err
		}
		if loc != nil {
			input.ShipTo = &render.Party{Name: loc.Name, Address: loc.Lines()}
		}
	}

	return input, nil
}
