// Package generation defines the boundary between the application core and
// the external AI generation service. The Generator interface and its
// request/result types are all the rest of the application knows about;
// the concrete Gemini-backed implementation lives in platform/genai.
package generation
