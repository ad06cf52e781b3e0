package handlers

const FallbackDecoyHash = fallbackDecoyHash
