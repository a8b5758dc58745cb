package common

// AuthorizationHeaderName carries the bearer token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the only accepted authorization scheme.
const BearerPrefix = "Bearer "
