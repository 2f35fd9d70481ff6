package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

var (
	errBadAuthHeader  = &types.Error{Kind: types.KindAuthentication, Message: "invalid Authorization header format"}
	errBadCredentials = &types.Error{Kind: types.KindAuthentication, Message: "invalid credentials"}
)

// reject ends the request with the status of err's kind and its public message.
// Errors outside the taxonomy answer 500 without their cause.
func reject(w http.ResponseWriter, err error) {
	body, mErr := json.Marshal(map[string]string{"error": types.PublicMessage(err)})
	if mErr != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(types.KindOf(err).HTTPStatus())
	_, _ = w.Write(append(body, '\n'))
}
