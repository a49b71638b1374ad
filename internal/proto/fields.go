package proto

import "google.golang.org/protobuf/types/known/structpb"

// String returns the string value of key, or "" when the field is missing
// or not a string.
func String(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	if sv, ok := v.GetKind().(*structpb.Value_StringValue); ok {
		return sv.StringValue
	}
	return ""
}

// Struct returns the nested struct at key, or nil.
func Struct(s *structpb.Struct, key string) *structpb.Struct {
	if s == nil {
		return nil
	}
	return s.GetFields()[key].GetStructValue()
}

// Structs returns the nested structs of the list at key. Non-struct list
// elements are skipped.
func Structs(s *structpb.Struct, key string) []*structpb.Struct {
	if s == nil {
		return nil
	}
	list := s.GetFields()[key].GetListValue()
	var out []*structpb.Struct
	for _, v := range list.GetValues() {
		if st := v.GetStructValue(); st != nil {
			out = append(out, st)
		}
	}
	return out
}

// Strings builds a struct whose fields are all strings. Empty values are
// dropped.
func Strings(kv map[string]string) *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(kv))
	for k, v := range kv {
		if v == "" {
			continue
		}
		fields[k] = structpb.NewStringValue(v)
	}
	return &structpb.Struct{Fields: fields}
}

// WithStruct returns a struct holding child under key.
func WithStruct(key string, child *structpb.Struct) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{key: structpb.NewStructValue(child)}}
}

// WithStructs returns a struct holding children as a list under key.
func WithStructs(key string, children []*structpb.Struct) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(children))
	for _, c := range children {
		values = append(values, structpb.NewStructValue(c))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		key: structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}
