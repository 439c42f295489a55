// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rowset

import (
	"errors"
	"testing"
)

func TestLookupInternalField(t *testing.T) {
	cases := []struct {
		name  string
		field InternalField
		typ   Type
	}{
		{ColPartitionOffset, FieldPartitionOffset, TypeBigint},
		{ColMessage, FieldMessage, TypeVarbinary},
		{ColMessageLength, FieldMessageLength, TypeBigint},
		{ColKey, FieldKey, TypeVarbinary},
		{ColKeyLength, FieldKeyLength, TypeBigint},
		{ColTimestamp, FieldTimestamp, TypeTimestamp},
		{ColKeyCorrupt, FieldKeyCorrupt, TypeBoolean},
		{ColMessageCorrupt, FieldMessageCorrupt, TypeBoolean},
		{ColHeaders, FieldHeaders, TypeHeaderMap},
		{ColPartitionID, FieldPartitionID, TypeBigint},
	}
	for _, tc := range cases {
		field, err := LookupInternalField(tc.name)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if field != tc.field {
			t.Fatalf("%s: expected field %d, got %d", tc.name, tc.field, field)
		}
		if typ := InternalFieldType(field); typ != tc.typ {
			t.Fatalf("%s: expected type %s, got %s", tc.name, tc.typ, typ)
		}
	}
}

func TestLookupInternalFieldUnknown(t *testing.T) {
	if _, err := LookupInternalField("_nope"); !errors.Is(err, ErrUnknownInternalField) {
		t.Fatalf("expected ErrUnknownInternalField, got %v", err)
	}
}
