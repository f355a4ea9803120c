// Package wire is the gRPC transport between seawise-agent and
// seawise-server.
//
// The service has a single unary method:
//
//	seawise.v1.PredictionService/SendPrediction(PredictionSnapshot) → SendResponse
//
// Messages are the plain Go structs from package types encoded as JSON
// through a registered gRPC codec (content-subtype "json"), so no generated
// protobuf code is involved. Clients built with NewPredictionServiceClient
// select the codec automatically; servers pick it up from the request's
// content-type once this package is imported.
package wire
