package aggregates

// OpDeleteLeadCascade exposes the operation name to external tests.
const OpDeleteLeadCascade = opDeleteLeadCascade
