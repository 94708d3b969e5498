// internal/workers/matching/notify-matched-suppliers/models.go
package notifymatchedsuppliers

type Input struct {
	RFQID   int64  `json:"rfqId"`
	Message string `json:"message,omitempty"`
}

type Output struct {
	Success             bool    `json:"success"`
	NotifiedCount       int     `json:"notifiedCount"`
	NotifiedSupplierIDs []int64 `json:"notifiedSupplierIds"`
	FailedSupplierIDs   []int64 `json:"failedSupplierIds"`
}

const inputSchema = `{
	"type": "object",
	"required": ["rfqId"],
	"properties": {
		"rfqId":   {"type": "integer", "minimum": 1},
		"message": {"type": ["string", "null"], "maxLength": 2000}
	}
}`
