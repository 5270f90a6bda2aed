package api

var ErrorStatus = errorStatus
