package storage

import "affiliateScope/internal/render"

// Region is an output region. Each Replace overwrites the previous content.
type Region interface {
	Replace(view render.DisplayModel) error
}

// Multi fans a view out to several regions, stopping at the first error.
type Multi []Region

func (m Multi) Replace(view render.DisplayModel) error {
	for _, r := range m {
		if err := r.Replace(view); err != nil {
			return err
		}
	}
	return nil
}
