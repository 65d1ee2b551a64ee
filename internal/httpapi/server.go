// Package httpapi serves the watcher's health, metrics, device state and remote command endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openkarotz-hq/karotz-go/internal/logger"
	"github.com/openkarotz-hq/karotz-go/pkg/devices"
	"github.com/openkarotz-hq/karotz-go/pkg/karotz"
	"github.com/openkarotz-hq/karotz-go/pkg/publishers"
)

// Commander is the set of device commands reachable over the API.
type Commander interface {
	Wakeup(ctx context.Context, silent bool) (bool, error)
	Sleep(ctx context.Context) (bool, error)
	TakeSnapshot(ctx context.Context, silent bool) (bool, error)
	TTS(ctx context.Context, female bool, language, text string) (bool, error)
	LEDColor(ctx context.Context, color string, pulse bool, speed int, color2 string) (bool, error)
	EarsPosition(ctx context.Context, left, right int, reset bool) (bool, error)
}

// CommanderFactory resolves the client for a device.
type CommanderFactory func(d devices.Device) (Commander, error)

// DeviceSource lists configured devices.
type DeviceSource interface {
	All() []devices.Device
	ByID(id string) (devices.Device, bool)
}

// StateSource returns the last observed device state.
type StateSource interface {
	State(deviceID string) (publishers.DeviceState, bool)
}

// CommandRecorder counts commands issued through the API.
type CommandRecorder interface {
	ObserveCommand(command string, ok bool, err error)
}

// Server holds the API dependencies. Metrics and Recorder are optional.
type Server struct {
	Devices    DeviceSource
	States     StateSource
	Commanders CommanderFactory
	Metrics    http.Handler
	Recorder   CommandRecorder
	Log        logger.Logger
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	if s.Log == nil {
		s.Log = logger.NopLogger{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/api/devices", func(r chi.Router) {
		r.Get("/", s.handleDevicesList)
		r.Route("/{device_id}", func(r chi.Router) {
			r.Get("/state", s.handleDeviceState)
			r.Post("/wakeup", s.command("wakeup", s.wakeup))
			r.Post("/sleep", s.command("sleep", s.sleep))
			r.Post("/snapshot", s.command("snapshot", s.snapshot))
			r.Post("/tts", s.command("tts", s.tts))
			r.Post("/leds", s.command("leds", s.leds))
			r.Post("/ears", s.command("ears", s.ears))
		})
	})
	return r
}

type jsonErr struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type deviceView struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Host      string                  `json:"host"`
	Enabled   bool                    `json:"enabled"`
	Snapshots bool                    `json:"snapshots"`
	State     *publishers.DeviceState `json:"state,omitempty"`
}

type commandResult struct {
	DeviceID string `json:"device_id"`
	Command  string `json:"command"`
	OK       bool   `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, jsonErr{Error: msg, Code: status})
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) view(d devices.Device) deviceView {
	v := deviceView{ID: d.ID, Name: d.Name, Host: d.Host, Enabled: d.IsEnabled(), Snapshots: d.Snapshots}
	if s.States != nil {
		if st, ok := s.States.State(d.ID); ok {
			v.State = &st
		}
	}
	return v
}

func (s *Server) handleDevicesList(w http.ResponseWriter, _ *http.Request) {
	all := s.Devices.All()
	out := make([]deviceView, 0, len(all))
	for _, d := range all {
		out = append(out, s.view(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) device(w http.ResponseWriter, r *http.Request) (devices.Device, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "device_id"))
	d, ok := s.Devices.ByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown device")
	}
	return d, ok
}

func (s *Server) handleDeviceState(w http.ResponseWriter, r *http.Request) {
	d, ok := s.device(w, r)
	if !ok {
		return
	}
	v := s.view(d)
	if v.State == nil {
		writeError(w, http.StatusNotFound, "device not observed yet")
		return
	}
	writeJSON(w, http.StatusOK, v.State)
}

// commandFunc decodes its own body and runs one device command.
type commandFunc func(ctx context.Context, c Commander, r *http.Request) (bool, error)

var errBadRequest = errors.New("bad request")

func (s *Server) command(name string, fn commandFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := s.device(w, r)
		if !ok {
			return
		}
		c, err := s.Commanders(d)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		done, err := fn(r.Context(), c, r)
		if s.Recorder != nil {
			s.Recorder.ObserveCommand(name, done, err)
		}
		if err != nil {
			status := http.StatusBadGateway
			switch {
			case errors.Is(err, errBadRequest), errors.Is(err, karotz.ErrInvalidArgument):
				status = http.StatusBadRequest
			case errors.Is(err, karotz.ErrUnsupportedOperation):
				status = http.StatusNotImplemented
			}
			s.Log.WarnObj("device command failed", "command_error", map[string]any{
				"device_id": d.ID,
				"command":   name,
				"error":     err.Error(),
			})
			writeError(w, status, err.Error())
			return
		}

		s.Log.InfoObj("device command issued", "command_meta", map[string]any{
			"device_id": d.ID,
			"command":   name,
			"ok":        done,
		})
		writeJSON(w, http.StatusOK, commandResult{DeviceID: d.ID, Command: name, OK: done})
	}
}

type silentBody struct {
	Silent bool `json:"silent"`
}

func decodeBody(r *http.Request, dst any) error {
	if err := decodeOptionalJSON(r, dst); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func (s *Server) wakeup(ctx context.Context, c Commander, r *http.Request) (bool, error) {
	var body silentBody
	if err := decodeBody(r, &body); err != nil {
		return false, err
	}
	return c.Wakeup(ctx, body.Silent)
}

func (s *Server) sleep(ctx context.Context, c Commander, _ *http.Request) (bool, error) {
	return c.Sleep(ctx)
}

func (s *Server) snapshot(ctx context.Context, c Commander, r *http.Request) (bool, error) {
	var body silentBody
	if err := decodeBody(r, &body); err != nil {
		return false, err
	}
	return c.TakeSnapshot(ctx, body.Silent)
}

func (s *Server) tts(ctx context.Context, c Commander, r *http.Request) (bool, error) {
	var body struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Female   bool   `json:"female"`
	}
	if err := decodeBody(r, &body); err != nil {
		return false, err
	}
	if body.Language == "" {
		body.Language = "en-US"
	}
	return c.TTS(ctx, body.Female, body.Language, body.Text)
}

func (s *Server) leds(ctx context.Context, c Commander, r *http.Request) (bool, error) {
	var body struct {
		Color  string `json:"color"`
		Pulse  bool   `json:"pulse"`
		Speed  int    `json:"speed"`
		Color2 string `json:"color2"`
	}
	if err := decodeBody(r, &body); err != nil {
		return false, err
	}
	return c.LEDColor(ctx, body.Color, body.Pulse, body.Speed, body.Color2)
}

func (s *Server) ears(ctx context.Context, c Commander, r *http.Request) (bool, error) {
	var body struct {
		Left  int  `json:"left"`
		Right int  `json:"right"`
		Reset bool `json:"reset"`
	}
	if err := decodeBody(r, &body); err != nil {
		return false, err
	}
	return c.EarsPosition(ctx, body.Left, body.Right, body.Reset)
}
