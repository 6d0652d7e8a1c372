package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted record types. The records
// are flat, so the serializers compose the stock ord/raw/varint serializers
// field by field in declaration order. Changing a struct means changing its
// serializer in the same commit; the stores hold no other format.

var (
	stringSliceMUS  = ord.NewSliceSer[string](ord.String)
	fieldsMUS       = ord.NewMapSer[string, []string](ord.String, stringSliceMUS)
	vectorMUS       = ord.NewSliceSer[float32](raw.Float32)
	fieldVectorsMUS = ord.NewMapSer[string, []float32](ord.String, vectorMUS)
)

// Timestamps are persisted as microseconds since the Unix epoch.

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

// ProductMUS serializes Product records.
var ProductMUS = productMUS{}

type productMUS struct{}

func (productMUS) attrs(p *Product) []*string {
	return []*string{
		&p.Code, &p.Name, &p.Strength, &p.Form, &p.Packaging, &p.Route,
		&p.Supplement, &p.Container, &p.Holder, &p.HolderCountry,
		&p.RegistrationStatus, &p.ATCCode, &p.RegistrationNumber,
		&p.DDDAmount, &p.DDDUnit, &p.DDDPack, &p.Dispensing,
		&p.Expiration, &p.ExpirationUnit, &p.RegisteredName,
		&p.SafetyFeatures, &p.PackLanguage, &p.RegistrationDate,
	}
}

func (s productMUS) Marshal(p Product, bs []byte) (n int) {
	for _, attr := range s.attrs(&p) {
		n += ord.String.Marshal(*attr, bs[n:])
	}
	n += marshalTime(p.InsertedAt, bs[n:])
	n += marshalTime(p.UpdatedAt, bs[n:])
	return n
}

func (s productMUS) Unmarshal(bs []byte) (p Product, n int, err error) {
	var n1 int
	for _, attr := range s.attrs(&p) {
		*attr, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	p.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s productMUS) Size(p Product) (size int) {
	for _, attr := range s.attrs(&p) {
		size += ord.String.Size(*attr)
	}
	size += sizeTime(p.InsertedAt)
	size += sizeTime(p.UpdatedAt)
	return size
}

// DocumentMUS serializes Document records.
var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = ord.String.Marshal(d.Code, bs)
	n += ord.String.Marshal(d.DocID, bs[n:])
	n += ord.String.Marshal(d.Type, bs[n:])
	n += ord.String.Marshal(d.Name, bs[n:])
	n += ord.ByteSlice.Marshal(d.Data, bs[n:])
	n += varint.Int.Marshal(d.Size, bs[n:])
	n += varint.Uint64.Marshal(uint64(d.Checksum), bs[n:])
	n += marshalTime(d.InsertedAt, bs[n:])
	n += marshalTime(d.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	d.Code, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	d.DocID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Type, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Data, n1, err = ord.ByteSlice.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Size, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var checksum uint64
	checksum, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Checksum = Checksum(checksum)
	d.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (documentMUS) Size(d Document) (size int) {
	size = ord.String.Size(d.Code)
	size += ord.String.Size(d.DocID)
	size += ord.String.Size(d.Type)
	size += ord.String.Size(d.Name)
	size += ord.ByteSlice.Size(d.Data)
	size += varint.Int.Size(d.Size)
	size += varint.Uint64.Size(uint64(d.Checksum))
	size += sizeTime(d.InsertedAt)
	size += sizeTime(d.UpdatedAt)
	return size
}

// ExtractedFactMUS serializes ExtractedFact records.
var ExtractedFactMUS = extractedFactMUS{}

type extractedFactMUS struct{}

func (extractedFactMUS) Marshal(f ExtractedFact, bs []byte) (n int) {
	n = ord.String.Marshal(f.Code, bs)
	n += fieldsMUS.Marshal(f.Fields, bs[n:])
	n += ord.String.Marshal(f.SourceText, bs[n:])
	n += marshalTime(f.InsertedAt, bs[n:])
	n += marshalTime(f.UpdatedAt, bs[n:])
	return n
}

func (extractedFactMUS) Unmarshal(bs []byte) (f ExtractedFact, n int, err error) {
	var n1 int
	f.Code, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	f.Fields, n1, err = fieldsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	f.SourceText, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	f.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	f.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (extractedFactMUS) Size(f ExtractedFact) (size int) {
	size = ord.String.Size(f.Code)
	size += fieldsMUS.Size(f.Fields)
	size += ord.String.Size(f.SourceText)
	size += sizeTime(f.InsertedAt)
	size += sizeTime(f.UpdatedAt)
	return size
}

// VectorRecordMUS serializes VectorRecord records.
var VectorRecordMUS = vectorRecordMUS{}

type vectorRecordMUS struct{}

func (vectorRecordMUS) Marshal(v VectorRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.Code, bs)
	n += fieldVectorsMUS.Marshal(v.FieldVectors, bs[n:])
	n += vectorMUS.Marshal(v.Combined, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (vectorRecordMUS) Unmarshal(bs []byte) (v VectorRecord, n int, err error) {
	var n1 int
	v.Code, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.FieldVectors, n1, err = fieldVectorsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Combined, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (vectorRecordMUS) Size(v VectorRecord) (size int) {
	size = ord.String.Size(v.Code)
	size += fieldVectorsMUS.Size(v.FieldVectors)
	size += vectorMUS.Size(v.Combined)
	size += sizeTime(v.InsertedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}
