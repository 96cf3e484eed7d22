package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"
	_ "time/tzdata"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/formdocumentflow/internal/services"
)

var (
	formDocInstance *services.FormDocFunction
	once            sync.Once
	initErr         error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleDebugLatestResponse", handleDebugLatestResponse)
}

func main() {}

// handleDebugLatestResponse re-runs the workflow on the latest stored response
// of FORM_ID. It always picks the same record, so it is for manual testing only.
func handleDebugLatestResponse(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		formDocInstance, initErr = services.NewFormDoc(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: FormDoc initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	res, err := formDocInstance.ProcessLatest(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error: processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err, "invocationId", res.InvocationID)
		http.Error(w, "Internal Server Error: failed to encode response", http.StatusInternalServerError)
	}
}
