package mongoclient

import (
	"errors"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

var ErrNotStruct = errors.New("selector source is not a struct")

// MakeBsonM turns an id struct into a selector. Zero fields are left out so a partial id
// matches every document sharing the set fields; pointers are dereferenced.
func MakeBsonM(id interface{}) (bson.M, error) {
	val := reflect.Indirect(reflect.ValueOf(id))
	if val.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	res := bson.M{}
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() || field.IsZero() {
			continue
		}
		tag, err := bsoncodec.DefaultStructTagParser(typ.Field(i))
		if err != nil {
			return nil, err
		}
		if tag.Skip {
			continue
		}
		res[tag.Name] = reflect.Indirect(field).Interface()
	}
	return res, nil
}
