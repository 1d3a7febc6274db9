package engine

import (
	"context"
	"errors"
	"strings"
)

// Bulk operations resolve each selected item name over every subsection of
// sectionKey that lists it and apply the single-item operation to each, one
// after another. They are not atomic: a failure leaves earlier writes in
// place and the remaining items are still attempted. The count is the number
// of (subsection, item) targets the operation applies to; a subsection whose
// trait list lacks the trait is skipped.

func (s *Service) BulkComplete(ctx context.Context, sectionKey string, items []string, trait string) (int, error) {
	if strings.TrimSpace(trait) == "" {
		return 0, nil
	}
	return s.bulk(sectionKey, items, trait, func(sub, item string) error {
		return s.SetTraitCompleted(ctx, sub, item, trait, true)
	})
}

func (s *Service) BulkBank(ctx context.Context, sectionKey string, items []string, inBank bool) (int, error) {
	return s.bulk(sectionKey, items, "", func(sub, item string) error {
		return s.SetBank(ctx, sub, item, inBank)
	})
}

func (s *Service) BulkTimer(ctx context.Context, sectionKey string, items []string, trait string, hours float64) (int, error) {
	if strings.TrimSpace(trait) == "" {
		return 0, nil
	}
	return s.bulk(sectionKey, items, trait, func(sub, item string) error {
		_, err := s.SetTimer(ctx, sub, item, trait, hours)
		return err
	})
}

// bulk visits every target of items. A non-empty trait restricts the
// targets to subsections that research it.
func (s *Service) bulk(sectionKey string, items []string, trait string, fn func(sub, item string) error) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	var errs []error
	n := 0
	for _, item := range items {
		for _, sub := range s.catalog.SubsectionsWithItem(sectionKey, item) {
			if trait != "" && !s.catalog.ValidTrait(sub, item, trait) {
				continue
			}
			n++
			if err := fn(sub, item); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return n, errors.Join(errs...)
}

// SectionItems lists every item name of a section, the "select all" set.
func (s *Service) SectionItems(sectionKey string) []string {
	sec := s.catalog.Section(sectionKey)
	if sec == nil {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, sub := range sec.Subsections {
		for _, item := range sub.Items {
			if !seen[item] {
				seen[item] = true
				out = append(out, item)
			}
		}
	}
	return out
}
