package common

// SessionCookieName is the cookie carrying the session credential.
const SessionCookieName = "session"

// VerifyPath is the endpoint the access gate calls to check a session.
const VerifyPath = "/api/auth/verify"
