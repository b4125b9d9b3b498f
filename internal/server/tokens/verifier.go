package tokens

// Verifier is a token-verification strategy bound to one consumption
// context. The caller picks the strategy explicitly: the API guard verifies
// with the access strategy, the refresh flow with the refresh strategy.
type Verifier interface {
	Verify(tokenString string) (*Claims, error)
}

// AccessVerifier accepts only ACCESS tokens.
type AccessVerifier struct {
	svc *Service
}

func NewAccessVerifier(svc *Service) *AccessVerifier {
	return &AccessVerifier{svc: svc}
}

func (v *AccessVerifier) Verify(tokenString string) (*Claims, error) {
	return v.svc.Verify(tokenString, TokenTypeAccess)
}

// RefreshVerifier accepts only REFRESH tokens.
type RefreshVerifier struct {
	svc *Service
}

func NewRefreshVerifier(svc *Service) *RefreshVerifier {
	return &RefreshVerifier{svc: svc}
}

func (v *RefreshVerifier) Verify(tokenString string) (*Claims, error) {
	return v.svc.Verify(tokenString, TokenTypeRefresh)
}
