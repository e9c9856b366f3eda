package provider

import (
	"context"
)

// Refiner improves draft translations produced by another provider.
type Refiner interface {
	Refine(ctx context.Context, req TranslateRequest, drafts []string) ([]string, error)
	Name() string
}

// RefiningProvider translates with a base provider and passes the drafts
// through a Refiner. A failed refinement keeps the drafts.
type RefiningProvider struct {
	base    Provider
	refiner Refiner
}

// NewRefiningProvider wraps base with refiner.
func NewRefiningProvider(base Provider, refiner Refiner) *RefiningProvider {
	return &RefiningProvider{base: base, refiner: refiner}
}

// Translate implements Provider.
func (p *RefiningProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	drafts, err := p.base.Translate(ctx, req)
	if err != nil {
		return nil, err
	}

	refined, err := p.refiner.Refine(ctx, req, drafts)
	if err != nil {
		log.Warnw("refinement failed, keeping drafts", "refiner", p.refiner.Name(), "err", err)
		return drafts, nil
	}
	if len(refined) != len(drafts) {
		log.Warnw("refinement returned wrong count, keeping drafts", "want", len(drafts), "got", len(refined))
		return drafts, nil
	}
	return refined, nil
}

// Name implements Provider.
func (p *RefiningProvider) Name() string {
	return p.base.Name() + "+" + p.refiner.Name()
}

var _ Provider = (*RefiningProvider)(nil)
