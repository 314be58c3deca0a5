package model

// APICallLog is the audit row recorded for every remote registry call:
// request, response, status and timing.
type APICallLog struct {
	BaseModel
	UserID         uint64 `gorm:"column:user_id" json:"userId"`
	Method         string `gorm:"column:method" json:"method"`
	URL            string `gorm:"column:url;type:text" json:"url"`
	PutCode        *int64 `gorm:"column:put_code" json:"putCode"`
	Body           string `gorm:"column:body;type:text" json:"body"`
	Status         int    `gorm:"column:status" json:"status"`
	Response       string `gorm:"column:response;type:text" json:"response"`
	ResponseTimeMS int64  `gorm:"column:response_time_ms" json:"responseTimeMs"`
}

func (APICallLog) TableName() string {
	return "t_api_call_log"
}
