package memcatalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/pkg/delay"
	"gopkg.in/yaml.v3"
)

type (
	contentFile struct {
		Testimonials []testimonialRecord `yaml:"testimonials"`
		Team         []teamMemberRecord  `yaml:"team"`
	}

	testimonialRecord struct {
		ID       int    `yaml:"id"`
		Name     string `yaml:"name"`
		Location string `yaml:"location"`
		Quote    string `yaml:"quote"`
		Avatar   string `yaml:"avatar"`
	}

	teamMemberRecord struct {
		ID    int    `yaml:"id"`
		Name  string `yaml:"name"`
		Role  string `yaml:"role"`
		Bio   string `yaml:"bio"`
		Image string `yaml:"image"`
	}
)

type content struct {
	testimonials []domain.Testimonial
	team         []domain.TeamMember
}

func parseContent(data []byte) (content, error) {
	var f contentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return content{}, err
	}

	var (
		c    content
		errs []error
	)
	for _, r := range f.Testimonials {
		t := domain.Testimonial(r)
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		c.testimonials = append(c.testimonials, t)
	}
	for _, r := range f.Team {
		m := domain.TeamMember(r)
		if err := m.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		c.team = append(c.team, m)
	}
	if len(errs) != 0 {
		return content{}, errors.Join(errs...)
	}
	return c, nil
}

func (c Catalog) Testimonials(
	ctx context.Context,
) ([]domain.Testimonial, error) {
	const op = "Catalog.Testimonials"

	if err := delay.Wait(ctx, c.latency); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return append([]domain.Testimonial{}, c.content.testimonials...), nil
}

func (c Catalog) TeamMembers(ctx context.Context) ([]domain.TeamMember, error) {
	const op = "Catalog.TeamMembers"

	if err := delay.Wait(ctx, c.latency); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return append([]domain.TeamMember{}, c.content.team...), nil
}
