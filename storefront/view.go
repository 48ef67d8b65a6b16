package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/signature"
	"github.com/mikeydub/go-storefront/util"
)

// State is the view's top level state
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateWrongNetwork
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateWrongNetwork:
		return "wrong network"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	mintSucceededMessage = "NFT successfully minted!"
	mintFailedMessage    = "Failed to mint NFT!"
)

var chainNames = map[int64]string{
	1:        "Ethereum Mainnet",
	4:        "Rinkeby Testnet",
	5:        "Goerli Testnet",
	137:      "Polygon",
	80001:    "Mumbai Testnet",
	11155111: "Sepolia Testnet",
}

var (
	ErrWrongNetwork = errors.New("wallet is connected to the wrong network")
	ErrNotLoaded    = errors.New("catalog has not been loaded")
)

// ErrNotEligible is returned when an item cannot be minted from the current state
type ErrNotEligible struct {
	ID     int
	Reason string
}

func (e ErrNotEligible) Error() string {
	return fmt.Sprintf("nft %d cannot be minted: %s", e.ID, e.Reason)
}

// CatalogClient is the server API the view drives
type CatalogClient interface {
	GetNFTs(ctx context.Context) (persist.Catalog, error)
	RequestMint(ctx context.Context, id int, address persist.EthereumAddress) (signature.SignedPayload, error)
}

// View holds the buyer facing catalog state
type View struct {
	client   CatalogClient
	wallet   Wallet
	notifier Notifier
	chainID  *big.Int

	mu      sync.Mutex
	state   State
	items   persist.Catalog
	minting map[int]bool
}

// NewView returns a view that only allows interaction while the wallet is on chainID
func NewView(client CatalogClient, wallet Wallet, notifier Notifier, chainID *big.Int) *View {
	return &View{
		client:   client,
		wallet:   wallet,
		notifier: notifier,
		chainID:  chainID,
		state:    StateLoading,
		minting:  make(map[int]bool),
	}
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Items returns a copy of the last fetched catalog
func (v *View) Items() persist.Catalog {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items.Copy()
}

// Minting reports whether a mint of the item is in progress
func (v *View) Minting(id int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.minting[id]
}

// Load checks the wallet's network and fetches the catalog. On the wrong network the view is gated
// and nothing is fetched. A failed fetch leaves the view loading.
func (v *View) Load(ctx context.Context) error {
	chainID, err := v.wallet.ChainID(ctx)
	if err != nil {
		return err
	}

	if chainID.Cmp(v.chainID) != 0 {
		logger.For(ctx).Warnf("wallet is on chain %s, expected %s", chainID, v.chainID)
		v.setState(StateWrongNetwork)
		return nil
	}

	v.setState(StateLoading)
	return v.refresh(ctx)
}

// Mint requests an authorization for the item and submits it through the wallet. Success
// re-fetches the catalog. Any failure leaves the item eligible.
func (v *View) Mint(ctx context.Context, id int) error {
	if err := v.beginMint(id); err != nil {
		return err
	}

	ctx = logger.NewContextWithFields(ctx, logrus.Fields{"catalogID": id})

	txHash, err := v.mint(ctx, id)
	v.endMint(id)

	if err != nil {
		logger.For(ctx).WithError(err).Error("mint failed")
		v.notifier.Failure(mintFailedMessage)
		return err
	}

	logger.For(ctx).Infof("minted in transaction %s", txHash)
	v.notifier.Success(mintSucceededMessage)

	if err := v.refresh(ctx); err != nil {
		logger.For(ctx).WithError(err).Warn("failed to refresh catalog after mint")
	}

	return nil
}

func (v *View) mint(ctx context.Context, id int) (string, error) {
	signed, err := v.client.RequestMint(ctx, id, v.wallet.Address())
	if err != nil {
		return "", err
	}
	return v.wallet.MintWithSignature(ctx, signed.Payload, signed.Signature)
}

func (v *View) beginMint(id int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch v.state {
	case StateWrongNetwork:
		return ErrWrongNetwork
	case StateLoading:
		return ErrNotLoaded
	}

	item, err := v.items.Get(id)
	if err != nil {
		return err
	}
	if item.Minted {
		return ErrNotEligible{ID: id, Reason: "already minted"}
	}
	if v.minting[id] {
		return ErrNotEligible{ID: id, Reason: "mint in progress"}
	}

	v.minting[id] = true
	return nil
}

func (v *View) endMint(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.minting, id)
}

func (v *View) refresh(ctx context.Context) error {
	items, err := v.client.GetNFTs(ctx)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = items
	v.state = StateLoaded
	return nil
}

func (v *View) setState(s State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = s
}

// Render writes the view as text
func (v *View) Render(w io.Writer) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch v.state {
	case StateWrongNetwork:
		_, err := fmt.Fprintf(w, "Please connect to the %s\n", chainName(v.chainID))
		return err
	case StateLoading:
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tPRICE\tIMAGE\tSTATUS")
	for _, item := range v.items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", item.ID, item.Name, item.Description, priceLabel(item.Price), item.URL, v.status(item))
	}
	return tw.Flush()
}

func (v *View) status(item persist.CatalogItem) string {
	switch {
	case v.minting[item.ID]:
		return "Minting... You will need to approve 1 transaction"
	case item.Minted:
		return "This NFT has already been minted"
	default:
		return fmt.Sprintf("Mint (run: mint %d)", item.ID)
	}
}

// priceLabel shows the amount the wallet is charged, as converted to wei for the transaction
func priceLabel(price float64) string {
	wei, err := util.EtherToWei(price)
	if err != nil {
		return fmt.Sprintf("%g", price)
	}
	return util.WeiToEther(wei) + " ETH"
}

func chainName(id *big.Int) string {
	if id.IsInt64() {
		if name, ok := chainNames[id.Int64()]; ok {
			return name
		}
	}
	return fmt.Sprintf("network with chain id %s", id)
}
