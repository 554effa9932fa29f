package v1

import (
	"net/http"
	"time"

	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

func HealthHandler(s store.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.Ping(r.Context())
		ok := err == nil
		data := map[string]interface{}{
			"db":   ok,
			"time": time.Now(),
		}
		if !ok {
			utils.WriteJSONResponse(w, http.StatusServiceUnavailable, false, "db unreachable", data, err.Error())
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, true, "ok", data, nil)
	}
}
