package config

type WorkerKeyStruct struct {
	DeliveryQueue     string
	DeliveryDeadQueue string
}

var WorkerKey = &WorkerKeyStruct{
	DeliveryQueue:     "notify_delivery_queue",
	DeliveryDeadQueue: "notify_delivery_dead",
}
