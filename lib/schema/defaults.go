// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"reflect"
	"time"
)

// ApplyDefaults fills zero-valued fields of a parameter struct from
// their default struct tags, using the same parsing rules as
// [ParamsSchema]. Call it after unmarshaling tool arguments so that
// omitted parameters take the defaults the schema advertises.
//
// params must be a pointer to a struct. Fields that already hold a
// non-zero value are left alone; a caller cannot distinguish "omitted"
// from "explicitly zero", but schemas that declare a default also
// declare bounds or enums that exclude the zero value.
func ApplyDefaults(params any) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to struct, got %T", params)
	}
	return applyStructDefaults(value.Elem())
}

func applyStructDefaults(structValue reflect.Value) error {
	structType := structValue.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := applyStructDefaults(structValue.Field(i)); err != nil {
				return err
			}
			continue
		}
		if !field.IsExported() {
			continue
		}

		defaultString := field.Tag.Get("default")
		if defaultString == "" {
			continue
		}

		fieldValue := structValue.Field(i)
		if !fieldValue.IsZero() {
			continue
		}

		if err := setDefault(fieldValue, field.Type, defaultString); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}

	return nil
}

// setDefault parses defaultString per the field type and stores it.
func setDefault(fieldValue reflect.Value, fieldType reflect.Type, defaultString string) error {
	if fieldType == durationType {
		d, err := time.ParseDuration(defaultString)
		if err != nil {
			return err
		}
		fieldValue.SetInt(int64(d))
		return nil
	}

	parsed, err := parseDefault(fieldType, defaultString)
	if err != nil {
		return err
	}

	switch fieldType.Kind() {
	case reflect.String:
		fieldValue.SetString(parsed.(string))
	case reflect.Bool:
		fieldValue.SetBool(parsed.(bool))
	case reflect.Int:
		fieldValue.SetInt(int64(parsed.(int)))
	case reflect.Int64:
		fieldValue.SetInt(parsed.(int64))
	case reflect.Float64:
		fieldValue.SetFloat(parsed.(float64))
	case reflect.Slice:
		fieldValue.Set(reflect.ValueOf(parsed))
	default:
		return fmt.Errorf("unsupported type %s", fieldType)
	}
	return nil
}
