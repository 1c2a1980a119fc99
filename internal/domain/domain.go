package domain

import "github.com/yungbote/leadops-backend/internal/domain/crm"

type Lead = crm.Lead
type LeadTag = crm.LeadTag

type Conversation = crm.Conversation
type Message = crm.Message
type AudioMessage = crm.AudioMessage
type AgentMessage = crm.AgentMessage
type ResponseEvaluation = crm.ResponseEvaluation
type MessageEvaluation = crm.MessageEvaluation

type LeadInteraction = crm.LeadInteraction
type LeadEvaluation = crm.LeadEvaluation
type LeadStageHistory = crm.LeadStageHistory
type LeadFieldChange = crm.LeadFieldChange
type LeadTagRelation = crm.LeadTagRelation
type LeadComment = crm.LeadComment
type LeadTemperatureHistory = crm.LeadTemperatureHistory
type LeadPIIToken = crm.LeadPIIToken
type LeadPersonalData = crm.LeadPersonalData

type LeadDeletionLog = crm.LeadDeletionLog
