// Package discovery registers the service with a Eureka registry.
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/IGDevX/marche-conclu-shop-service/pkg/httpclient"
)

// DefaultHeartbeatInterval matches Eureka's lease renewal default.
const DefaultHeartbeatInterval = 30 * time.Second

// Doer sends HTTP requests. *httpclient.CircuitBreakerClient implements it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config describes the registered instance.
type Config struct {
	DefaultZone       string
	AppName           string
	Hostname          string
	IPAddr            string
	Port              int
	HeartbeatInterval time.Duration
}

// Registrar keeps one instance registered for the lifetime of Run.
type Registrar struct {
	cfg    Config
	client Doer
	logger *slog.Logger
}

// NewRegistrar creates a Registrar.
func NewRegistrar(cfg Config, client Doer, logger *slog.Logger) *Registrar {
	if !strings.HasSuffix(cfg.DefaultZone, "/") {
		cfg.DefaultZone += "/"
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.IPAddr == "" {
		cfg.IPAddr = cfg.Hostname
	}
	cfg.AppName = strings.ToUpper(cfg.AppName)
	return &Registrar{cfg: cfg, client: client, logger: logger}
}

// InstanceID is "<hostname>:<app>:<port>".
func (r *Registrar) InstanceID() string {
	return fmt.Sprintf("%s:%s:%d", r.cfg.Hostname, strings.ToLower(r.cfg.AppName), r.cfg.Port)
}

type port struct {
	Value   int    `json:"$"`
	Enabled string `json:"@enabled"`
}

type dataCenterInfo struct {
	Class string `json:"@class"`
	Name  string `json:"name"`
}

type instance struct {
	InstanceID     string         `json:"instanceId"`
	HostName       string         `json:"hostName"`
	App            string         `json:"app"`
	IPAddr         string         `json:"ipAddr"`
	VIPAddress     string         `json:"vipAddress"`
	Status         string         `json:"status"`
	Port           port           `json:"port"`
	HomePageURL    string         `json:"homePageUrl"`
	StatusPageURL  string         `json:"statusPageUrl"`
	HealthCheckURL string         `json:"healthCheckUrl"`
	DataCenterInfo dataCenterInfo `json:"dataCenterInfo"`
}

func (r *Registrar) instance() instance {
	base := fmt.Sprintf("http://%s:%d", r.cfg.Hostname, r.cfg.Port)
	return instance{
		InstanceID:     r.InstanceID(),
		HostName:       r.cfg.Hostname,
		App:            r.cfg.AppName,
		IPAddr:         r.cfg.IPAddr,
		VIPAddress:     strings.ToLower(r.cfg.AppName),
		Status:         "UP",
		Port:           port{Value: r.cfg.Port, Enabled: "true"},
		HomePageURL:    base + "/",
		StatusPageURL:  base + "/health/live",
		HealthCheckURL: base + "/health/ready",
		DataCenterInfo: dataCenterInfo{
			Class: "com.netflix.appinfo.InstanceInfo$DefaultDataCenterInfo",
			Name:  "MyOwn",
		},
	}
}

func (r *Registrar) appURL() string {
	return r.cfg.DefaultZone + "apps/" + r.cfg.AppName
}

func (r *Registrar) instanceURL() string {
	return r.appURL() + "/" + r.InstanceID()
}

// Register announces the instance.
func (r *Registrar) Register(ctx context.Context) error {
	body, err := json.Marshal(map[string]instance{"instance": r.instance()})
	if err != nil {
		return fmt.Errorf("marshal eureka instance: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.appURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return r.send(ctx, req, "register")
}

// Heartbeat renews the lease. NotFound means the registry forgot us.
func (r *Registrar) Heartbeat(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.instanceURL(), nil)
	if err != nil {
		return err
	}
	return r.send(ctx, req, "heartbeat")
}

// Deregister removes the instance.
func (r *Registrar) Deregister(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.instanceURL(), nil)
	if err != nil {
		return err
	}
	return r.send(ctx, req, "deregister")
}

func (r *Registrar) send(ctx context.Context, req *http.Request, op string) error {
	req.Header.Set("Accept", "application/json")
	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("eureka %s: %w", op, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("eureka %s: %w", op, httpclient.ParseResponseError(resp, "eureka"))
	}
	_ = resp.Body.Close()
	return nil
}

// Run registers, heartbeats until ctx is canceled, then deregisters. A failed
// registration is retried on the next tick; a heartbeat rejected by the
// registry triggers a new registration.
func (r *Registrar) Run(ctx context.Context) {
	log := r.logger.With(slog.String("instance_id", r.InstanceID()))

	registered := r.tryRegister(ctx, log)

	ticker := time.NewTicker(r.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if registered {
				dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				if err := r.Deregister(dctx); err != nil {
					log.Warn("eureka deregistration failed", slog.String("error", err.Error()))
				} else {
					log.Info("deregistered from eureka")
				}
				cancel()
			}
			return
		case <-ticker.C:
			if !registered {
				registered = r.tryRegister(ctx, log)
				continue
			}
			if err := r.Heartbeat(ctx); err != nil {
				log.Warn("eureka heartbeat failed, re-registering", slog.String("error", err.Error()))
				registered = r.tryRegister(ctx, log)
			}
		}
	}
}

func (r *Registrar) tryRegister(ctx context.Context, log *slog.Logger) bool {
	if err := r.Register(ctx); err != nil {
		if ctx.Err() == nil {
			log.Warn("eureka registration failed", slog.String("error", err.Error()))
		}
		return false
	}
	log.Info("registered with eureka", slog.String("zone", r.cfg.DefaultZone))
	return true
}
