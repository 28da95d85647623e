package status

type SuccessCode int

const (
	OK       SuccessCode = 200
	Accepted SuccessCode = 202
)
