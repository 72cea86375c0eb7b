package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"messenger-backend/apperrors"

	"github.com/google/uuid"
)

// RemoteVerifier asks the auth service to verify tokens. Every failure mode —
// transport error, non-200 response, invalid verdict, deadline exceeded — maps
// to an Unauthorized error so a slow or broken auth service can never grant
// access by accident.
type RemoteVerifier struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid bool   `json:"valid"`
	Sub   string `json:"sub"`
	Login string `json:"login"`
}

func NewRemoteVerifier(baseURL string, timeout time.Duration) *RemoteVerifier {
	return &RemoteVerifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return nil, apperrors.ErrVerificationFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/verify", v.baseURL), bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ErrVerificationFailed(err)
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrVerificationFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ErrInvalidToken
	}

	var verdict verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, apperrors.ErrVerificationFailed(err)
	}
	if !verdict.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	subjectID, err := uuid.Parse(verdict.Sub)
	if err != nil {
		return nil, apperrors.ErrVerificationFailed(err)
	}
	return &Identity{SubjectID: subjectID, Login: verdict.Login}, nil
}
