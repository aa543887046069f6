package types

// Attribute names used in the readings table.
const (
	AttrKodePos     = "kode_pos"
	AttrKelurahan   = "kelurahan"
	AttrTimestamp   = "timestamp"
	AttrPH          = "ph"
	AttrTemperature = "temperature"
	AttrTDS         = "tds"
	AttrTurbidity   = "turbidity"
)

// FeatureColumns is the column order of the feature matrix fed to the scaler and classifier.
var FeatureColumns = []string{AttrPH, AttrTemperature, AttrTDS, AttrTurbidity}

// Reading is one stored sensor observation, kept as its decoded DynamoDB attributes.
type Reading struct {
	Attributes map[string]interface{}
}

// Get returns the raw attribute value and whether the key was present.
func (r Reading) Get(name string) (interface{}, bool) {
	v, ok := r.Attributes[name]
	return v, ok
}

// Timestamp is the display form of a reading's epoch-millisecond timestamp.
type Timestamp struct {
	Datetime string `json:"datetime"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

// ClassifiedReading is a Reading enriched with the model label and display timestamp.
type ClassifiedReading struct {
	Reading        Reading
	Classification string
	Timestamp      Timestamp
}

// Item flattens the reading into the response shape: every stored attribute plus
// model_classification, datetime, date and time.
func (c ClassifiedReading) Item() map[string]interface{} {
	item := make(map[string]interface{}, len(c.Reading.Attributes)+4)
	for k, v := range c.Reading.Attributes {
		item[k] = v
	}

	item["model_classification"] = c.Classification
	item["datetime"] = c.Timestamp.Datetime
	item["date"] = c.Timestamp.Date
	item["time"] = c.Timestamp.Time

	return item
}

// PostalCode is one catalog entry returned by GET /kode-pos.
type PostalCode struct {
	KodePos   int64  `json:"kode_pos" dynamodbav:"kode_pos"`
	Kelurahan string `json:"kelurahan" dynamodbav:"kelurahan"`
}

// APIResponse is the JSON envelope for every API route.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
