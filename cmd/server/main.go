package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"google.golang.org/appengine"

	"github.com/mikeydub/go-storefront/server"
)

func main() {
	server.Init()

	if strings.HasSuffix(os.Getenv("SERVER_SOFTWARE"), "Google App Engine/") {
		logrus.Info("Running in App Engine Mode")
		appengine.Main()
	} else {
		port := viper.GetString("PORT")
		logrus.Infof("Running in Default Mode on port %s", port)
		if err := http.ListenAndServe(fmt.Sprintf(":%s", port), nil); err != nil {
			logrus.Fatal(err)
		}
	}
}
