package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/mikeydub/go-storefront/service/ledger"
	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/persist"
)

//go:embed catalog.yml
var defaultCatalog []byte

// Default returns the built in six item catalog
func Default() persist.Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads a catalog from a YAML file
func LoadFile(path string) (persist.Catalog, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bs)
}

// Parse decodes and validates a YAML catalog
func Parse(bs []byte) (persist.Catalog, error) {
	var c persist.Catalog
	if err := yaml.Unmarshal(bs, &c); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Provider serves the catalog annotated with what the ledger has issued. Outstanding
// authorizations are not minted and do not show here.
type Provider struct {
	catalog    persist.Catalog
	ledger     ledger.Ledger
	collection persist.EthereumAddress
}

func NewProvider(c persist.Catalog, l ledger.Ledger, collection persist.EthereumAddress) (*Provider, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Provider{
		catalog:    c.Copy(),
		ledger:     l,
		collection: collection,
	}, nil
}

// Len returns the number of catalog items
func (p *Provider) Len() int {
	return len(p.catalog)
}

// Item returns the static definition of an item, without minted state
func (p *Provider) Item(id int) (persist.CatalogItem, error) {
	return p.catalog.Get(id)
}

// List returns every item, marking those the ledger has issued.
// Ledger failures are logged and leave items at their static state.
func (p *Provider) List(ctx context.Context) persist.Catalog {
	result := p.catalog.Copy()
	p.markIssued(ctx, result)
	return result
}

// Get returns one annotated item
func (p *Provider) Get(ctx context.Context, id int) (persist.CatalogItem, error) {
	if !p.catalog.Contains(id) {
		return persist.CatalogItem{}, persist.ErrCatalogItemNotFound{ID: id}
	}
	return p.List(ctx)[id], nil
}

func (p *Provider) markIssued(ctx context.Context, c persist.Catalog) {
	if p.ledger == nil {
		return
	}

	tokens, err := p.ledger.GetTokensByCollection(ctx, p.collection)
	if err != nil {
		logger.For(ctx).WithError(err).Warn("failed to get issued tokens, serving static catalog")
		return
	}
	if len(tokens) == 0 {
		logger.For(ctx).Warnf("no issued tokens found for %s", p.collection)
		return
	}

	for _, t := range tokens {
		id, ok := t.Metadata.CatalogID()
		if !ok {
			logger.For(ctx).WithField("tokenID", t.TokenID).Debug("token has no catalog id")
			continue
		}
		if !c.Contains(id) {
			logger.For(ctx).WithFields(logrus.Fields{"tokenID": t.TokenID, "catalogID": id}).Debug("token references an id outside the catalog")
			continue
		}
		c[id].Minted = true
	}
}
