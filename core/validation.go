// Copyright 2025 Poiesic Systems
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


package core

import "fmt"

// ValidateDocument validates a Document before it is persisted.
//
// Validation rules:
//   - Path must not be empty (it is the identity key)
//   - Name must not be empty
//   - Type must be one of pdf, image, audio
//
// NOT validated:
//   - Id (0 is valid before the store assigns one)
//   - Pages (0 is valid for images and audio)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.Path == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalidDocument)
	}
	if doc.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidDocument)
	}
	if !doc.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidDocument, doc.Type)
	}
	return nil
}
