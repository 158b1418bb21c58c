package constants

// Version of the sealchain daemon.
const Version = "sealchain/0.1.0"
