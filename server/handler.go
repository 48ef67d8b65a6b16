package server

import (
	"github.com/gin-gonic/gin"

	"github.com/mikeydub/go-storefront/service/catalog"
	"github.com/mikeydub/go-storefront/service/mint"
)

func handlersInit(router *gin.Engine, provider *catalog.Provider, minter *mint.Service) *gin.Engine {
	apiGroup := router.Group("/api")

	// [GET] /api/get-nfts
	apiGroup.GET("/get-nfts", getNFTs(provider))

	// [POST] /api/get-nfts
	apiGroup.POST("/get-nfts", mintNFT(minter))

	router.GET("/alive", healthcheck())

	return router
}
