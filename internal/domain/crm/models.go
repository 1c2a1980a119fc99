package crm

// Models lists every table of the lead schema in migration order (parents first).
func Models() []interface{} {
	return []interface{}{
		&Lead{},
		&LeadTag{},
		&Conversation{},
		&Message{},
		&AudioMessage{},
		&AgentMessage{},
		&ResponseEvaluation{},
		&MessageEvaluation{},
		&LeadInteraction{},
		&LeadEvaluation{},
		&LeadStageHistory{},
		&LeadFieldChange{},
		&LeadTagRelation{},
		&LeadComment{},
		&LeadTemperatureHistory{},
		&LeadPIIToken{},
		&LeadPersonalData{},
		&LeadDeletionLog{},
	}
}
