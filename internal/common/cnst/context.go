package cnst

// gin context keys set by the api server middleware
const (
	CtxKeyClaims  = "claims"
	CtxKeyActor   = "actor"
	CtxKeyTraceID = "trace_id"
)

// CtxKeyUser holds the *database.User behind the actor
const CtxKeyUser = "user"
