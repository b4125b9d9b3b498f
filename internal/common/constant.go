package common

// AccessTokenHeaderName is the HTTP header carrying the bearer access token.
const AccessTokenHeaderName = "Authorization"

// RefreshTokenHeaderName is the HTTP header carrying the refresh token on
// refresh requests.
const RefreshTokenHeaderName = "refreshtoken"
