package oauth

import (
	"encoding/json"
	"time"

	"github.com/quintans/faults"
)

// distantFuture stands in for "never expires". The OAuth2 spec makes
// expires_in optional; a credential without one must stay valid forever.
var distantFuture = time.Date(9999, time.January, 1, 0, 0, 0, 0, time.UTC)

// Credential models the tokens returned by an OAuth2 token endpoint.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiration   time.Time `json:"expiration"`
}

// Expired reports whether the access token is past its expiration. A
// credential with no expiration never expires.
func (c Credential) Expired() bool {
	return !c.Expiration.IsZero() && c.Expiration.Before(time.Now())
}

func (c Credential) Marshal() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, faults.Errorf("marshalling credential: %w", err)
	}
	return data, nil
}

func UnmarshalCredential(data []byte) (Credential, error) {
	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return Credential{}, faults.Errorf("unmarshalling credential: %w", err)
	}
	return c, nil
}
