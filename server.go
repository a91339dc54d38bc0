package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/intervention-engine/fhir/models"
	"github.com/intervention-engine/fhir/upload"
	"github.com/intervention-engine/news2service/assessments"
	"github.com/intervention-engine/news2service/history"
	"github.com/intervention-engine/news2service/news2"
	"github.com/intervention-engine/news2service/server"
	"github.com/intervention-engine/news2service/service"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"
	"gopkg.in/mgo.v2"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	envPath := flag.String("env", ".env", "Path to a .env file to load into the environment")
	httpAddr := flag.String("http", "", "Address to listen on, overriding the configuration")
	registerURL := flag.String("registerURL", "", "Register a FHIR Subscription to the specified URL")
	registerENV := flag.Bool("registerENV", false, "Register a FHIR Subscription to the the Docker environment variable IE_PORT_3001_TCP*")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Can't load %s: %v", *envPath, err)
	}
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err = cfg.ApplyEnv(os.Getenv); err != nil {
		log.Fatal(err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	selfURL := cfg.BaseURL
	if selfURL == "" {
		selfURL = discoverSelf(cfg.HTTPAddr)
	}
	selfURL = strings.TrimSuffix(selfURL, "/") + "/"

	if *registerURL != "" {
		registerServer(*registerURL, selfURL)
	}
	if *registerENV {
		registerServer(fmt.Sprintf("http://%s:%s", os.Getenv("IE_PORT_3001_TCP_ADDR"), os.Getenv("IE_PORT_3001_TCP_PORT")), selfURL)
	}

	session, err := mgo.Dial(cfg.MongoHost)
	if err != nil {
		log.Fatalf("Can't connect to the database at %s: %v", cfg.MongoHost, err)
	}
	defer session.Close()
	db := session.DB(cfg.Database)

	scorer, err := news2.NewScorer()
	if err != nil {
		log.Fatalf("Can't build the NEWS-2 rule base: %v", err)
	}
	store := history.NewStore(db)
	if err = store.EnsureIndexes(); err != nil {
		log.Fatalf("Can't index the assessment history: %v", err)
	}

	riskService := service.NewReferenceRiskService(db)
	riskService.RegisterPlugin(assessments.NewNEWS2Plugin(scorer))
	fnDelayer := server.NewFunctionDelayer(cfg.CalculationDelay)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	server.RegisterRoutes(e, db, selfURL+"pies", riskService, fnDelayer)
	server.RegisterAPIRoutes(e, scorer, store)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", echo.HeaderXRequestID},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", echo.HeaderXRequestID},
		AllowCredentials: true,
	})
	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: corsHandler.Handler(e)}

	go func() {
		log.Printf("NEWS-2 service listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	if n := fnDelayer.Stop(); n > 0 {
		log.Printf("Dropped %d pending calculations", n)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Println(err)
	}
}

// discoverSelf guesses the URL other hosts can reach this service on.
func discoverSelf(httpAddr string) string {
	_, port, err := net.SplitHostPort(httpAddr)
	if err != nil || port == "" {
		port = "9000"
	}
	selfURL := "http://localhost:" + port + "/"
	host, err := os.Hostname()
	if err != nil {
		log.Println("Unable to determine hostname, defaulting to localhost.")
		return selfURL
	}
	addrs, err := net.LookupIP(host)
	if err != nil {
		log.Println("Unable to lookup IP based on hostname, defaulting to localhost.")
		return selfURL
	}
	for _, addr := range addrs {
		if ipv4 := addr.To4(); ipv4 != nil {
			selfURL = "http://" + ipv4.String() + ":" + port + "/"
		}
	}
	return selfURL
}

// registerServer subscribes the calculate hook to changes on the FHIR server.
func registerServer(fhirURL, selfURL string) {
	channel := &models.SubscriptionChannelComponent{Type: "rest-hook", Endpoint: selfURL + "calculate"}
	sub := models.Subscription{
		Criteria: "Observation",
		Reason:   "Recalculate NEWS-2 when vital signs change",
		Status:   "requested",
		Channel:  channel,
	}
	if _, err := upload.UploadResource(&sub, fhirURL); err != nil {
		log.Printf("Couldn't register the subscription with %s: %v", fhirURL, err)
	}
}
