// Package component defines the lifecycle contract shared by the long-lived
// parts of a beankit application: the bean container and the HTTP server.
//
// A Registry starts components in registration order and stops them in
// reverse, so the container is registered before the server that serves its
// beans and outlives it on shutdown.
package component
