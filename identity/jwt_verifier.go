package identity

import (
	"context"
	"fmt"

	"messenger-backend/apperrors"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// LocalVerifier validates HS256 tokens issued by the auth service when both
// services share the signing secret. Claims carry "user_id" and "login".
type LocalVerifier struct {
	secret []byte
}

func NewLocalVerifier(secret string) *LocalVerifier {
	return &LocalVerifier{secret: []byte(secret)}
}

func (v *LocalVerifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, apperrors.ErrVerificationFailed(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	rawUserID, ok := claims["user_id"].(string)
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}
	subjectID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	login, _ := claims["login"].(string)
	return &Identity{SubjectID: subjectID, Login: login}, nil
}
