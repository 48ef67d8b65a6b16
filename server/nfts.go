package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikeydub/go-storefront/service/catalog"
	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/mint"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/util"
)

// errInvalidRequest is the message returned for a body that cannot be bound
var errInvalidRequest = errors.New("Invalid request")

type mintNFTInput struct {
	ID      *int                    `json:"id" binding:"required,min=0"`
	Address persist.EthereumAddress `json:"address" binding:"required,eth_addr"`
}

func getNFTs(provider *catalog.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, provider.List(c))
	}
}

func mintNFT(minter *mint.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input mintNFTInput
		if err := c.ShouldBindJSON(&input); err != nil {
			logger.For(c).WithError(err).Debug("rejecting mint request")
			util.MessageErrResponse(c, http.StatusBadRequest, errInvalidRequest)
			return
		}

		signed, err := minter.Authorize(c, *input.ID, input.Address)
		if err != nil {
			var notFound mint.ErrNFTNotFound
			var alreadyMinted mint.ErrNFTAlreadyMinted
			var reserved mint.ErrNFTReserved

			switch {
			case errors.As(err, &notFound):
				util.MessageErrResponse(c, http.StatusBadRequest, fmt.Errorf("NFT %d not found", notFound.ID))
			case errors.As(err, &alreadyMinted):
				util.MessageErrResponse(c, http.StatusBadRequest, fmt.Errorf("NFT %d already minted", alreadyMinted.ID))
			case errors.As(err, &reserved):
				util.MessageErrResponse(c, http.StatusBadRequest, fmt.Errorf("NFT %d is reserved by another buyer", reserved.ID))
			default:
				logger.For(c).WithError(err).Errorf("failed to authorize mint of nft %d", *input.ID)
				util.DetailErrResponse(c, http.StatusInternalServerError, err)
			}
			return
		}

		c.JSON(http.StatusCreated, signed)
	}
}
