package checklist

// ResolveStage reconciles the stage a ref asked for against the stages the
// fetched checklist declares valid. It runs once per fetch, before the
// checklist is published.
//
// If declared is non-empty and requested is not among them, the caller must
// redirect to the first declared stage. If declared is empty, the only valid
// stage is the empty one. Otherwise the requested stage is accepted.
//
// The returned stage is meaningful only when redirect is true.
func ResolveStage(requested string, declared []string) (stage string, redirect bool) {
	if len(declared) == 0 {
		if requested != "" {
			return "", true
		}
		return "", false
	}
	for _, s := range declared {
		if s == requested {
			return "", false
		}
	}
	return declared[0], true
}
