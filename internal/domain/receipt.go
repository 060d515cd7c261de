package domain

// Receipt описывает квитанцию заказа, которая хранится в S3
type Receipt struct {
	Bucket      string
	ObjectKey   string
	Data        []byte
	ContentType string
}

func NewReceipt(bucket string, objectKey string, data []byte, contentType string) *Receipt {
	return &Receipt{
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Data:        data,
		ContentType: contentType,
	}
}
