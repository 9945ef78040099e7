package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/tnscouts/shopfront/lib/myhttpclient"
	"github.com/tnscouts/shopfront/lib/mypublisher"
	"github.com/tnscouts/shopfront/lib/mypubsub"
	"github.com/tnscouts/shopfront/lib/myqueue"
	"github.com/tnscouts/shopfront/lib/mystore"
	"github.com/tnscouts/shopfront/lib/mytime"
	"github.com/tnscouts/shopfront/lib/myuuid"
	"github.com/tnscouts/shopfront/services/cart"
	"github.com/tnscouts/shopfront/services/catalog"
	"github.com/tnscouts/shopfront/services/checkout"
	"github.com/tnscouts/shopfront/services/checkout/scoutapi"
	"github.com/tnscouts/shopfront/services/session"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	cartStore, cartStoreCleanup, err := mystore.New[cart.Cart](c)
	if err != nil {
		log.Fatalf("Error creating cart store: %s", err)
	}
	defer cartStoreCleanup()

	sessionStore, sessionStoreCleanup, err := mystore.New[session.Session](c)
	if err != nil {
		log.Fatalf("Error creating session store: %s", err)
	}
	defer sessionStoreCleanup()

	pendingStore, pendingStoreCleanup, err := mystore.New[checkout.PendingPurchase](c)
	if err != nil {
		log.Fatalf("Error creating pending purchase store: %s", err)
	}
	defer pendingStoreCleanup()

	catalogService := catalog.NewService()
	catalogWebService := catalog.NewWebService(catalogService)
	catalogWebService.RegisterEndpoints(c, router)

	cartWebService := cart.NewWebService(cartStore, nower, uuider, publisher)
	err = cartWebService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering cart endpoints: %s", err)
	}

	sessionService := session.NewService(sessionStore, nower)

	remoteClient := scoutapi.NewClient(scoutAPIBaseURL(), myhttpclient.New())

	checkoutWebService := checkout.NewWebService(pendingStore, sessionService,
		cartWebService.Service(), catalogService, remoteClient, nower, uuider, publisher, pubsub)
	err = checkoutWebService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering checkout endpoints: %s", err)
	}

	startWebServerBlocking(router)
}

func scoutAPIBaseURL() string {
	baseURL := os.Getenv("SCOUT_API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	return baseURL
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
