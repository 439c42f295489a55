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
	"fmt"
)

// InternalField enumerates the synthetic columns the reader computes
// from message metadata. The set is closed; dispatch is by tag.
type InternalField int

const (
	FieldPartitionOffset InternalField = iota
	FieldMessage
	FieldMessageLength
	FieldKey
	FieldKeyLength
	FieldTimestamp
	FieldKeyCorrupt
	FieldMessageCorrupt
	FieldHeaders
	FieldPartitionID
)

// Internal column names as exposed to SQL.
const (
	ColPartitionOffset = "_partition_offset"
	ColMessage         = "_message"
	ColMessageLength   = "_message_length"
	ColKey             = "_key"
	ColKeyLength       = "_key_length"
	ColTimestamp       = "_timestamp"
	ColKeyCorrupt      = "_key_corrupt"
	ColMessageCorrupt  = "_message_corrupt"
	ColHeaders         = "_headers"
	ColPartitionID     = "_partition_id"
)

// ErrUnknownInternalField reports an internal column name the catalog
// does not recognize. This is a connector configuration bug and is
// surfaced at record set construction, not per row.
var ErrUnknownInternalField = errors.New("unknown internal field")

var internalFieldCatalog = map[string]InternalField{
	ColPartitionOffset: FieldPartitionOffset,
	ColMessage:         FieldMessage,
	ColMessageLength:   FieldMessageLength,
	ColKey:             FieldKey,
	ColKeyLength:       FieldKeyLength,
	ColTimestamp:       FieldTimestamp,
	ColKeyCorrupt:      FieldKeyCorrupt,
	ColMessageCorrupt:  FieldMessageCorrupt,
	ColHeaders:         FieldHeaders,
	ColPartitionID:     FieldPartitionID,
}

// LookupInternalField resolves an internal column name to its field tag.
func LookupInternalField(name string) (InternalField, error) {
	field, ok := internalFieldCatalog[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownInternalField, name)
	}
	return field, nil
}

// InternalFieldType returns the declared type of an internal field.
func InternalFieldType(field InternalField) Type {
	switch field {
	case FieldPartitionOffset, FieldMessageLength, FieldKeyLength, FieldPartitionID:
		return TypeBigint
	case FieldMessage, FieldKey:
		return TypeVarbinary
	case FieldTimestamp:
		return TypeTimestamp
	case FieldKeyCorrupt, FieldMessageCorrupt:
		return TypeBoolean
	case FieldHeaders:
		return TypeHeaderMap
	default:
		return TypeVarbinary
	}
}
