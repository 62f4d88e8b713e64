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


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.Provider interface against OpenAI or
// OpenAI-compatible services (such as Ollama, LocalAI, or vLLM): embeddings
// and chat via langchaingo, image OCR via a vision-capable chat model, and
// speech transcription via the whisper-style audio endpoint.
//
// All services are constructed once by NewProvider; there is no lazy
// per-call client initialization.
package openai
