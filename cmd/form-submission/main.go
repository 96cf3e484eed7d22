package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	_ "time/tzdata"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/formdocumentflow/internal/services"
)

var (
	formDocInstance *services.FormDocFunction
	once            sync.Once
	initErr         error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// "HandleFormSubmission" receives submissions posted by the form trigger,
	// "HandleFormSubmissionEvent" the same payload delivered as a CloudEvent.
	functions.HTTP("HandleFormSubmission", handleFormSubmission)
	functions.CloudEvent("HandleFormSubmissionEvent", handleFormSubmissionEvent)
}

// main is required by the Go Functions Framework.
func main() {}

func instance() (*services.FormDocFunction, error) {
	once.Do(func() {
		formDocInstance, initErr = services.NewFormDoc(context.Background())
	})
	return formDocInstance, initErr
}

// handleFormSubmission is the HTTP handler for form submissions.
func handleFormSubmission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	formDoc, err := instance()
	if err != nil {
		slog.Error("Critical: FormDoc initialization failed", "error", err)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Warn("Could not read request body", "error", err)
		http.Error(w, "Bad Request: could not read body", http.StatusBadRequest)
		return
	}

	// A malformed body is reported to the administrator like any other failure.
	res, err := formDoc.ProcessPayload(r.Context(), body)
	if err != nil {
		// The error is already logged with context in the run method.
		http.Error(w, "Internal Server Error: processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err, "invocationId", res.InvocationID)
	}
}

// handleFormSubmissionEvent is the CloudEvent entry point.
func handleFormSubmissionEvent(ctx context.Context, e cloudevents.Event) error {
	formDoc, err := instance()
	if err != nil {
		slog.Error("Critical error during function initialization", "error", err)
		return err
	}

	res, err := formDoc.ProcessPayload(ctx, e.Data())
	if err != nil {
		// Only an undeliverable error notification reaches here.
		return err
	}
	slog.Info("Form submission event handled.", "eventId", e.ID(), "status", res.Status, "invocationId", res.InvocationID)
	return nil
}
