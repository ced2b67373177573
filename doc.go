// Package ttsmaker is a client for the TTSMaker text-to-speech API.
//
// A Client submits synthesis requests and returns Orders; an Order persists
// its audio to local storage, fetching it from the service first when it was
// not returned inline:
//
//	client, err := ttsmaker.NewClient(ttsmaker.WithToken(token))
//	if err != nil {
//		// ...
//	}
//
//	order, err := client.CreateTTSOrder(ctx, "hello world", 1504)
//	if err != nil {
//		// ...
//	}
//
//	if err := order.SaveAudio(ctx, "hello"); err != nil { // writes hello.mp3
//		// ...
//	}
//
// API reference: https://ttsmaker.com/developer-api-docs
package ttsmaker
